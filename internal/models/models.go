package models

// CreateGuestRequest - admin-side guest creation.
type CreateGuestRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	UserType  string `json:"user_type,omitempty"`
	Area      string `json:"area,omitempty"`
	NumGuests *int   `json:"num_guests,omitempty"`
}

// UpdateGuestRequest - sparse partial update; nil fields stay unchanged.
type UpdateGuestRequest struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Attendance *string `json:"attendance,omitempty"`
	NumGuests  *int    `json:"num_guests,omitempty"`
	Area       *string `json:"area,omitempty"`
	Vegan      *int    `json:"vegan,omitempty"`
	Kids       *int    `json:"kids,omitempty"`
	Meat       *int    `json:"meat,omitempty"`
	GlutenFree *int    `json:"gluten_free,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Transport  *string `json:"transport,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (r *UpdateGuestRequest) Empty() bool {
	return r.Name == nil && r.Phone == nil && r.Attendance == nil &&
		r.NumGuests == nil && r.Area == nil && r.Vegan == nil &&
		r.Kids == nil && r.Meat == nil && r.GlutenFree == nil &&
		r.Notes == nil && r.Transport == nil
}

// GuestResponse is a guest record plus its derived seating numbers.
type GuestResponse struct {
	Guest
	SeatsAssigned int `json:"seats_assigned"`
	ReserveCount  int `json:"reserve_count"`
}

// NewGuestResponse derives the reserve count from current seat ownership.
// The reserve count is never stored.
func NewGuestResponse(g Guest, seatsAssigned int) GuestResponse {
	reserve := g.NumGuests - seatsAssigned
	if reserve < 0 {
		reserve = 0
	}
	return GuestResponse{Guest: g, SeatsAssigned: seatsAssigned, ReserveCount: reserve}
}

// OpenTableRequest - grow an area by one fresh table.
type OpenTableRequest struct {
	Area     string `json:"area" binding:"required"`
	Capacity int    `json:"capacity"`
}

// AssignSeatsRequest - seat a guest at one (area, table).
type AssignSeatsRequest struct {
	GuestID     int64  `json:"guest_id" binding:"required"`
	Area        string `json:"area" binding:"required"`
	TableNumber int    `json:"table_number" binding:"required"`
}

// ReleaseSeatsRequest - free everything a guest holds.
type ReleaseSeatsRequest struct {
	GuestID int64 `json:"guest_id" binding:"required"`
}

// TableInfo describes one table as the admin seat picker sees it:
// physical capacity, how many seats the acting guest could still take
// (free or already theirs), and who else sits there.
type TableInfo struct {
	Area         string          `json:"area"`
	Number       int             `json:"number"`
	GlobalLabel  string          `json:"global_label"`
	Capacity     int             `json:"capacity"`
	FreeForGuest int             `json:"free_for_guest"`
	Occupants    map[int64]int   `json:"occupants"`
}

// SeatGroup is one line of a guest's seat summary (area + table + count).
type SeatGroup struct {
	Area        string `json:"area"`
	TableNumber int    `json:"table_number"`
	Count       int    `json:"count"`
}

// RSVPLoginRequest - self-service identity step. ConfirmNew must be set
// before an unknown phone creates a record.
type RSVPLoginRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	ConfirmNew bool   `json:"confirm_new"`
}

// RSVPAttendanceRequest - yes/no attendance choice.
type RSVPAttendanceRequest struct {
	GuestID int64 `json:"guest_id" binding:"required"`
	Coming  bool  `json:"coming"`
}

// RSVPPartyRequest - guided party-details step: count, meal breakdown,
// optional transport, area (only honored when none is stored yet).
type RSVPPartyRequest struct {
	GuestID   int64      `json:"guest_id" binding:"required"`
	NumGuests int        `json:"num_guests"`
	Meals     MealCounts `json:"meals"`
	Transport string     `json:"transport,omitempty"`
	Area      string     `json:"area,omitempty"`
}

// SessionDetailsRequest - admin lifecycle "details" save.
type SessionDetailsRequest struct {
	Attendance *string `json:"attendance,omitempty"`
	NumGuests  *int    `json:"num_guests,omitempty"`
	Area       *string `json:"area,omitempty"`
}

// SessionConfirmRequest - admin lifecycle seat confirmation.
type SessionConfirmRequest struct {
	Area        string `json:"area" binding:"required"`
	TableNumber int    `json:"table_number" binding:"required"`
}

// SessionResponse mirrors the controller's ephemeral state back to the UI.
type SessionResponse struct {
	GuestID int64       `json:"guest_id"`
	Stage   string      `json:"stage"`
	Guest   Guest       `json:"guest"`
	Summary []SeatGroup `json:"summary,omitempty"`
}
