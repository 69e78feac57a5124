package models

// Attendance values stored on a guest record.
const (
	AttendanceUnknown = "unknown"
	AttendanceYes     = "yes"
	AttendanceNo      = "no"
)

// Guest role tags.
const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// MealCounts is the per-category meal breakdown for a guest party.
type MealCounts struct {
	Vegan      int `json:"vegan" db:"vegan"`
	Kids       int `json:"kids" db:"kids"`
	Meat       int `json:"meat" db:"meat"`
	GlutenFree int `json:"gluten_free" db:"gluten_free"`
}

// Total returns the cross-category sum. It must never exceed the guest's
// declared count.
func (m MealCounts) Total() int {
	return m.Vegan + m.Kids + m.Meat + m.GlutenFree
}

// Guest represents one invited household/party.
type Guest struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Phone      string     `json:"phone" db:"phone"`
	UserType   string     `json:"user_type" db:"user_type"`
	Attendance string     `json:"attendance" db:"attendance"`
	NumGuests  int        `json:"num_guests" db:"num_guests"`
	Area       string     `json:"area" db:"area"`
	Meals      MealCounts `json:"meals"`
	Notes      string     `json:"notes" db:"notes"`
	Transport  string     `json:"transport" db:"transport"`
}

// Seat represents one individually ownable unit of capacity.
// Row is a display label only; Area + TableNumber is the grouping key.
type Seat struct {
	ID          int64  `json:"id" db:"id"`
	Area        string `json:"area" db:"area"`
	TableNumber int    `json:"table_number" db:"table_number"`
	Row         int    `json:"row" db:"row_number"`
	OwnerID     *int64 `json:"owner_id" db:"owner_id"`
}

// OwnedBy reports whether the seat is currently held by the given guest.
func (s *Seat) OwnedBy(guestID int64) bool {
	return s.OwnerID != nil && *s.OwnerID == guestID
}

// Free reports whether the seat has no owner.
func (s *Seat) Free() bool {
	return s.OwnerID == nil
}
