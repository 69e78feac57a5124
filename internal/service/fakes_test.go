package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"simcha/internal/models"
)

// fakeGuestStore is an in-memory GuestStore for service tests.
type fakeGuestStore struct {
	mu     sync.Mutex
	nextID int64
	guests map[int64]models.Guest
}

func newFakeGuestStore() *fakeGuestStore {
	return &fakeGuestStore{guests: make(map[int64]models.Guest)}
}

func (f *fakeGuestStore) Create(_ context.Context, g *models.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g.ID = f.nextID
	f.guests[g.ID] = *g
	return nil
}

func (f *fakeGuestStore) GetByID(_ context.Context, id int64) (*models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.guests[id]; ok {
		copy := g
		return &copy, nil
	}
	return nil, nil
}

func (f *fakeGuestStore) GetByPhone(_ context.Context, phone string) (*models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.guests {
		if g.Phone == phone {
			copy := g
			return &copy, nil
		}
	}
	return nil, nil
}

func (f *fakeGuestStore) List(_ context.Context, query string) ([]models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.guests))
	for id := range f.guests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []models.Guest
	for _, id := range ids {
		g := f.guests[id]
		if query == "" ||
			strings.Contains(strings.ToLower(g.Name), query) ||
			strings.Contains(g.Phone, query) {
			result = append(result, g)
		}
	}
	return result, nil
}

func (f *fakeGuestStore) Update(_ context.Context, g *models.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guests[g.ID] = *g
	return nil
}

func (f *fakeGuestStore) Areas(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var areas []string
	for _, g := range f.guests {
		if g.Area != "" && !seen[g.Area] {
			seen[g.Area] = true
			areas = append(areas, g.Area)
		}
	}
	sort.Strings(areas)
	return areas, nil
}

// fakeSeatStore mirrors the conditional-claim semantics of the SQL store:
// a claim succeeds only while the seat is free or already the claimant's.
type fakeSeatStore struct {
	mu     sync.Mutex
	nextID int64
	seats  map[int64]models.Seat
}

func newFakeSeatStore() *fakeSeatStore {
	return &fakeSeatStore{seats: make(map[int64]models.Seat)}
}

func (f *fakeSeatStore) addTable(area string, tableNumber, capacity int) []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, capacity)
	for row := 1; row <= capacity; row++ {
		f.nextID++
		f.seats[f.nextID] = models.Seat{
			ID:          f.nextID,
			Area:        area,
			TableNumber: tableNumber,
			Row:         row,
		}
		ids = append(ids, f.nextID)
	}
	return ids
}

func (f *fakeSeatStore) setOwner(seatID, guestID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat := f.seats[seatID]
	seat.OwnerID = &guestID
	f.seats[seatID] = seat
}

func (f *fakeSeatStore) sorted() []models.Seat {
	ids := make([]int64, 0, len(f.seats))
	for id := range f.seats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := f.seats[ids[i]], f.seats[ids[j]]
		if a.Area != b.Area {
			return a.Area < b.Area
		}
		if a.TableNumber != b.TableNumber {
			return a.TableNumber < b.TableNumber
		}
		return a.Row < b.Row
	})
	result := make([]models.Seat, len(ids))
	for i, id := range ids {
		result[i] = f.seats[id]
	}
	return result
}

func (f *fakeSeatStore) List(_ context.Context, area string, ownerID *int64) ([]models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Seat
	for _, seat := range f.sorted() {
		if area != "" && seat.Area != area {
			continue
		}
		if ownerID != nil && !seat.OwnedBy(*ownerID) {
			continue
		}
		result = append(result, seat)
	}
	return result, nil
}

func (f *fakeSeatStore) ListByTable(_ context.Context, area string, tableNumber int) ([]models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Seat
	for _, seat := range f.sorted() {
		if seat.Area == area && seat.TableNumber == tableNumber {
			result = append(result, seat)
		}
	}
	return result, nil
}

func (f *fakeSeatStore) ListByOwner(_ context.Context, guestID int64) ([]models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Seat
	for _, seat := range f.sorted() {
		if seat.OwnedBy(guestID) {
			result = append(result, seat)
		}
	}
	return result, nil
}

func (f *fakeSeatStore) Claim(_ context.Context, seatID, guestID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatID]
	if !ok {
		return false, nil
	}
	if seat.OwnerID != nil && *seat.OwnerID != guestID {
		return false, nil
	}
	seat.OwnerID = &guestID
	f.seats[seatID] = seat
	return true, nil
}

func (f *fakeSeatStore) Release(_ context.Context, seatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat := f.seats[seatID]
	seat.OwnerID = nil
	f.seats[seatID] = seat
	return nil
}

func (f *fakeSeatStore) ReleaseByOwner(_ context.Context, guestID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var released []int64
	for _, seat := range f.sorted() {
		if seat.OwnedBy(guestID) {
			seat.OwnerID = nil
			f.seats[seat.ID] = seat
			released = append(released, seat.ID)
		}
	}
	return released, nil
}

func (f *fakeSeatStore) ReleaseByOwnerExcept(_ context.Context, guestID int64, area string, tableNumber int) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var released []int64
	for _, seat := range f.sorted() {
		if seat.OwnedBy(guestID) && !(seat.Area == area && seat.TableNumber == tableNumber) {
			seat.OwnerID = nil
			f.seats[seat.ID] = seat
			released = append(released, seat.ID)
		}
	}
	return released, nil
}

func (f *fakeSeatStore) CountByOwner(_ context.Context, guestID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, seat := range f.seats {
		if seat.OwnedBy(guestID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeSeatStore) MaxTableNumber(_ context.Context, area string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, seat := range f.seats {
		if seat.Area == area && seat.TableNumber > max {
			max = seat.TableNumber
		}
	}
	return max, nil
}

func (f *fakeSeatStore) CreateTable(_ context.Context, area string, tableNumber, capacity int) ([]models.Seat, error) {
	f.addTable(area, tableNumber, capacity)
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Seat
	for _, seat := range f.sorted() {
		if seat.Area == area && seat.TableNumber == tableNumber {
			result = append(result, seat)
		}
	}
	return result, nil
}

func (f *fakeSeatStore) Areas(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var areas []string
	for _, seat := range f.seats {
		if seat.Area != "" && !seen[seat.Area] {
			seen[seat.Area] = true
			areas = append(areas, seat.Area)
		}
	}
	sort.Strings(areas)
	return areas, nil
}

// fakePublisher records published events by subject.
type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (f *fakePublisher) Publish(subject string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakePublisher) published(subject string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, s := range f.subjects {
		if s == subject {
			count++
		}
	}
	return count
}

// newTestServices wires every service over fresh fakes.
func newTestServices() (*Services, *fakeGuestStore, *fakeSeatStore, *fakePublisher) {
	guests := newFakeGuestStore()
	seats := newFakeSeatStore()
	pub := &fakePublisher{}

	guestService := NewGuestService(guests, seats, pub, nil)
	allocationService := NewAllocationService(guests, seats, pub)
	tableService := NewTableService(guests, seats, pub)
	lifecycleService := NewLifecycleService(guestService, seats, allocationService, tableService)
	rsvpService := NewRSVPService(guestService, guests, pub)

	return &Services{
		Guests:     guestService,
		Allocation: allocationService,
		Tables:     tableService,
		Lifecycle:  lifecycleService,
		RSVP:       rsvpService,
	}, guests, seats, pub
}
