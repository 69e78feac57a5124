package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"simcha/internal/apperr"
	"simcha/internal/logger"
	"simcha/internal/metrics"
	"simcha/internal/models"
)

// DefaultTableCapacity is used when openTable is called with capacity 0.
const DefaultTableCapacity = 12

// TableService derives table occupancy views from the seat store and grows
// capacity on demand. Tables and areas are not stored entities: a table is
// the set of seats sharing (area, table number), an area is any label a
// seat carries or a guest prefers.
type TableService struct {
	guests    GuestStore
	seats     SeatStore
	publisher EventPublisher
}

func NewTableService(guests GuestStore, seats SeatStore, publisher EventPublisher) *TableService {
	return &TableService{
		guests:    guests,
		seats:     seats,
		publisher: publisher,
	}
}

// Areas returns every known area: the distinct seat areas plus any area
// a guest has expressed as preference, so a preference can exist before a
// table in that area is built.
func (s *TableService) Areas(ctx context.Context) ([]string, error) {
	seatAreas, err := s.seats.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seat areas: %w", err)
	}
	guestAreas, err := s.guests.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list guest areas: %w", err)
	}

	seen := make(map[string]bool, len(seatAreas)+len(guestAreas))
	var areas []string
	for _, a := range append(seatAreas, guestAreas...) {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		areas = append(areas, a)
	}
	sort.Strings(areas)
	return areas, nil
}

// ListSeats returns raw seat rows, filtered by area and/or owner when the
// filters are non-zero.
func (s *TableService) ListSeats(ctx context.Context, area string, ownerID *int64) ([]models.Seat, error) {
	seats, err := s.seats.List(ctx, area, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	return seats, nil
}

// ListTables summarizes every table, optionally confined to one area.
// forGuest widens the free count to include seats that guest already owns
// (0 means no acting guest). Global labels are recomputed from the sorted
// area list on every call and never persisted.
func (s *TableService) ListTables(ctx context.Context, area string, forGuest int64) ([]models.TableInfo, error) {
	areas, err := s.Areas(ctx)
	if err != nil {
		return nil, err
	}
	areaIndex := make(map[string]int, len(areas))
	for i, a := range areas {
		areaIndex[a] = i + 1
	}

	seats, err := s.seats.List(ctx, area, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}

	type tableKey struct {
		area   string
		number int
	}
	tables := make(map[tableKey]*models.TableInfo)
	var order []tableKey

	for _, seat := range seats {
		key := tableKey{seat.Area, seat.TableNumber}
		info, ok := tables[key]
		if !ok {
			info = &models.TableInfo{
				Area:        seat.Area,
				Number:      seat.TableNumber,
				GlobalLabel: fmt.Sprintf("%d-%d", areaIndex[seat.Area], seat.TableNumber),
				Occupants:   make(map[int64]int),
			}
			tables[key] = info
			order = append(order, key)
		}

		info.Capacity++
		switch {
		case seat.Free():
			info.FreeForGuest++
		case forGuest != 0 && seat.OwnedBy(forGuest):
			info.FreeForGuest++
		default:
			info.Occupants[*seat.OwnerID]++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].area != order[j].area {
			return order[i].area < order[j].area
		}
		return order[i].number < order[j].number
	})

	result := make([]models.TableInfo, len(order))
	for i, key := range order {
		result[i] = *tables[key]
	}
	return result, nil
}

// OpenTable appends capacity seats under a fresh table number, one greater
// than the area's current maximum (1 for a brand-new area). Table numbers
// are never reused, even when a table empties out.
func (s *TableService) OpenTable(ctx context.Context, area string, capacity int) ([]models.Seat, error) {
	if area == "" {
		return nil, apperr.Validation("area", "must not be empty")
	}
	if capacity < 0 {
		return nil, apperr.Validation("capacity", "must not be negative")
	}
	if capacity == 0 {
		capacity = DefaultTableCapacity
	}

	maxNumber, err := s.seats.MaxTableNumber(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("failed to find max table number: %w", err)
	}

	seats, err := s.seats.CreateTable(ctx, area, maxNumber+1, capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	metrics.TablesOpened.Inc()
	if s.publisher != nil {
		event := models.TableOpenedEvent{
			Area:        area,
			TableNumber: maxNumber + 1,
			Capacity:    capacity,
			Timestamp:   time.Now(),
		}
		if err := s.publisher.Publish(models.EventTableOpened, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish event",
				"error", err, "subject", models.EventTableOpened)
		}
	}

	return seats, nil
}

// Summary groups a guest's seats into (area, table, count) lines for the
// confirmation screen.
func (s *TableService) Summary(ctx context.Context, guestID int64) ([]models.SeatGroup, error) {
	seats, err := s.seats.ListByOwner(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned seats: %w", err)
	}

	var groups []models.SeatGroup
	for _, seat := range seats {
		if n := len(groups); n > 0 && groups[n-1].Area == seat.Area && groups[n-1].TableNumber == seat.TableNumber {
			groups[n-1].Count++
			continue
		}
		groups = append(groups, models.SeatGroup{
			Area:        seat.Area,
			TableNumber: seat.TableNumber,
			Count:       1,
		})
	}
	return groups, nil
}
