package repository

import (
	"simcha/internal/database"
)

type Repositories struct {
	Guests *GuestRepository
	Seats  *SeatRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Guests: NewGuestRepository(db),
		Seats:  NewSeatRepository(db),
	}
}
