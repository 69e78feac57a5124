package service

import (
	"context"
	"fmt"
	"time"

	"simcha/internal/apperr"
	"simcha/internal/logger"
	"simcha/internal/metrics"
	"simcha/internal/models"
)

// AllocationService keeps the set of seats a guest owns equal to the
// guest's declared count, one (area, table) at a time. It never trusts a
// capacity view it did not just read: every claim is an atomic per-seat
// conditional update, so a racing writer loses a seat cleanly instead of
// sharing it.
type AllocationService struct {
	guests    GuestStore
	seats     SeatStore
	publisher EventPublisher
}

func NewAllocationService(guests GuestStore, seats SeatStore, publisher EventPublisher) *AllocationService {
	return &AllocationService{
		guests:    guests,
		seats:     seats,
		publisher: publisher,
	}
}

// AssignToTable seats the guest's whole declared party at one table.
//
// The capacity check counts seats that are free or already the guest's, so
// re-confirming a table you already sit at works. On success the guest owns
// exactly NumGuests seats at the target table (already-owned seats are kept
// first, then free seats in display order), owns nothing anywhere else, and
// the guest's area preference is set to the table's area. On a capacity
// error nothing has been mutated.
func (s *AllocationService) AssignToTable(ctx context.Context, guestID int64, area string, tableNumber int) (*models.Guest, []models.Seat, error) {
	guest, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get guest: %w", err)
	}
	if guest == nil {
		return nil, nil, apperr.ErrNotFound
	}

	tableSeats, err := s.seats.ListByTable(ctx, area, tableNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list table seats: %w", err)
	}

	// Seats the guest could end up with: free ones plus their own.
	var owned, free []models.Seat
	for _, seat := range tableSeats {
		switch {
		case seat.OwnedBy(guestID):
			owned = append(owned, seat)
		case seat.Free():
			free = append(free, seat)
		}
	}

	if len(owned)+len(free) < guest.NumGuests {
		metrics.CapacityRejections.Inc()
		return nil, nil, &apperr.CapacityError{
			Area:        area,
			TableNumber: tableNumber,
			Requested:   guest.NumGuests,
			Available:   len(owned) + len(free),
		}
	}

	// A guest occupies exactly one table: stale seats elsewhere go first.
	released, err := s.seats.ReleaseByOwnerExcept(ctx, guestID, area, tableNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to release previous seats: %w", err)
	}

	// Prefer seats already owned, then free seats in display order.
	want := append(owned, free...)
	if guest.NumGuests < len(want) {
		want = want[:guest.NumGuests]
	}

	claimed := make([]models.Seat, 0, len(want))
	for i := range want {
		ok, err := s.seats.Claim(ctx, want[i].ID, guestID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to claim seat %d: %w", want[i].ID, err)
		}
		if !ok {
			// Lost the race for this seat since our read. The seats
			// claimed so far stay with the guest (still <= declared);
			// the caller re-reads and retries.
			metrics.CapacityRejections.Inc()
			return nil, nil, &apperr.CapacityError{
				Area:        area,
				TableNumber: tableNumber,
				Requested:   guest.NumGuests,
				Available:   len(claimed),
			}
		}
		seat := want[i]
		seat.OwnerID = &guestID
		claimed = append(claimed, seat)
	}

	// Shrinking a party can leave the guest over-seated at this table;
	// drop the owned seats that were not re-claimed.
	for _, seat := range owned[min(guest.NumGuests, len(owned)):] {
		if err := s.seats.Release(ctx, seat.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to release surplus seat %d: %w", seat.ID, err)
		}
		released = append(released, seat.ID)
	}

	guest.Area = area
	if err := s.guests.Update(ctx, guest); err != nil {
		return nil, nil, fmt.Errorf("failed to persist area preference: %w", err)
	}

	metrics.SeatAssignments.Inc()
	newlyClaimed := len(claimed) - min(guest.NumGuests, len(owned))
	metrics.SeatsOccupied.Add(float64(newlyClaimed - len(released)))

	seatIDs := make([]int64, len(claimed))
	for i, seat := range claimed {
		seatIDs[i] = seat.ID
	}
	s.publish(ctx, models.EventSeatsAssigned, models.SeatsAssignedEvent{
		GuestID:     guestID,
		Area:        area,
		TableNumber: tableNumber,
		SeatIDs:     seatIDs,
		Timestamp:   time.Now(),
	})
	if len(released) > 0 {
		s.publish(ctx, models.EventSeatsReleased, models.SeatsReleasedEvent{
			GuestID:   guestID,
			SeatIDs:   released,
			Timestamp: time.Now(),
		})
	}

	return guest, claimed, nil
}

// ReleaseArea frees every seat the guest owns, wherever it is. Used when an
// area preference changes so stale seats do not linger against it.
func (s *AllocationService) ReleaseArea(ctx context.Context, guestID int64) ([]int64, error) {
	guest, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	if guest == nil {
		return nil, apperr.ErrNotFound
	}

	released, err := s.seats.ReleaseByOwner(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}

	if len(released) > 0 {
		metrics.SeatReleases.Inc()
		metrics.SeatsOccupied.Sub(float64(len(released)))
		s.publish(ctx, models.EventSeatsReleased, models.SeatsReleasedEvent{
			GuestID:   guestID,
			SeatIDs:   released,
			Timestamp: time.Now(),
		})
	}

	return released, nil
}

func (s *AllocationService) publish(ctx context.Context, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "error", err, "subject", subject)
	}
}
