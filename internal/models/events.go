package models

import "time"

// NATS subjects for domain events.
const (
	EventGuestCreated  = "guest.created"
	EventGuestUpdated  = "guest.updated"
	EventSeatsAssigned = "seats.assigned"
	EventSeatsReleased = "seats.released"
	EventTableOpened   = "table.opened"
)

type GuestCreatedEvent struct {
	GuestID   int64     `json:"guest_id"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source"` // "admin" or "rsvp"
	Timestamp time.Time `json:"timestamp"`
}

type GuestUpdatedEvent struct {
	GuestID   int64     `json:"guest_id"`
	Timestamp time.Time `json:"timestamp"`
}

type SeatsAssignedEvent struct {
	GuestID     int64     `json:"guest_id"`
	Area        string    `json:"area"`
	TableNumber int       `json:"table_number"`
	SeatIDs     []int64   `json:"seat_ids"`
	Timestamp   time.Time `json:"timestamp"`
}

type SeatsReleasedEvent struct {
	GuestID   int64     `json:"guest_id"`
	SeatIDs   []int64   `json:"seat_ids"`
	Timestamp time.Time `json:"timestamp"`
}

type TableOpenedEvent struct {
	Area        string    `json:"area"`
	TableNumber int       `json:"table_number"`
	Capacity    int       `json:"capacity"`
	Timestamp   time.Time `json:"timestamp"`
}
