package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SeatAssignments counts successful assignToTable calls.
	SeatAssignments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "simcha",
		Name:      "seat_assignments_total",
		Help:      "Successful seat assignments.",
	})

	// CapacityRejections counts assignments refused for lack of space.
	CapacityRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "simcha",
		Name:      "capacity_rejections_total",
		Help:      "Assignments rejected with a capacity error.",
	})

	// SeatReleases counts releaseArea calls that freed at least one seat.
	SeatReleases = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "simcha",
		Name:      "seat_releases_total",
		Help:      "Release operations that freed seats.",
	})

	// TablesOpened counts openTable calls.
	TablesOpened = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "simcha",
		Name:      "tables_opened_total",
		Help:      "Tables opened to grow capacity.",
	})

	// SeatsOccupied tracks how many seats currently have an owner.
	SeatsOccupied = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "simcha",
		Name:      "seats_occupied",
		Help:      "Seats currently held by a guest.",
	})
)

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
