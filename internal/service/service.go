package service

import (
	"context"

	"simcha/internal/messaging"
	"simcha/internal/models"
	"simcha/internal/repository"
	"simcha/internal/search"
)

// GuestStore is the persistence contract for guest records.
type GuestStore interface {
	Create(ctx context.Context, g *models.Guest) error
	GetByID(ctx context.Context, id int64) (*models.Guest, error)
	GetByPhone(ctx context.Context, phone string) (*models.Guest, error)
	List(ctx context.Context, query string) ([]models.Guest, error)
	Update(ctx context.Context, g *models.Guest) error
	Areas(ctx context.Context) ([]string, error)
}

// SeatStore is the persistence contract for seats. Claim is the single
// authoritative mutation: it must only succeed while the seat is free or
// already owned by the claiming guest.
type SeatStore interface {
	List(ctx context.Context, area string, ownerID *int64) ([]models.Seat, error)
	ListByTable(ctx context.Context, area string, tableNumber int) ([]models.Seat, error)
	ListByOwner(ctx context.Context, guestID int64) ([]models.Seat, error)
	Claim(ctx context.Context, seatID, guestID int64) (bool, error)
	Release(ctx context.Context, seatID int64) error
	ReleaseByOwner(ctx context.Context, guestID int64) ([]int64, error)
	ReleaseByOwnerExcept(ctx context.Context, guestID int64, area string, tableNumber int) ([]int64, error)
	CountByOwner(ctx context.Context, guestID int64) (int, error)
	MaxTableNumber(ctx context.Context, area string) (int, error)
	CreateTable(ctx context.Context, area string, tableNumber, capacity int) ([]models.Seat, error)
	Areas(ctx context.Context) ([]string, error)
}

// EventPublisher emits domain events. Failures are logged by callers and
// never fail the triggering operation.
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// GuestSearcher is the optional full-text index over guest records.
type GuestSearcher interface {
	IndexGuest(ctx context.Context, g *models.Guest) error
	Search(ctx context.Context, query string) ([]int64, error)
}

type Services struct {
	Guests     *GuestService
	Allocation *AllocationService
	Tables     *TableService
	Lifecycle  *LifecycleService
	RSVP       *RSVPService
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, guestIndex *search.GuestIndex) *Services {
	var searcher GuestSearcher
	if guestIndex != nil {
		searcher = guestIndex
	}

	guestService := NewGuestService(repos.Guests, repos.Seats, natsClient, searcher)
	allocationService := NewAllocationService(repos.Guests, repos.Seats, natsClient)
	tableService := NewTableService(repos.Guests, repos.Seats, natsClient)
	lifecycleService := NewLifecycleService(guestService, repos.Seats, allocationService, tableService)
	rsvpService := NewRSVPService(guestService, repos.Guests, natsClient)

	return &Services{
		Guests:     guestService,
		Allocation: allocationService,
		Tables:     tableService,
		Lifecycle:  lifecycleService,
		RSVP:       rsvpService,
	}
}
