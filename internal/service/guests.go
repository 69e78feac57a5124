package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"simcha/internal/apperr"
	"simcha/internal/logger"
	"simcha/internal/models"
)

var phoneRegexp = regexp.MustCompile(`^\d{10}$`)

// phoneSeparators are stripped before the phone is validated or matched.
var phoneSeparators = strings.NewReplacer("-", "", " ", "", "(", "", ")", "", ".", "")

// NormalizePhone strips separators from a phone number. The result is
// what gets validated, stored and matched against.
func NormalizePhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}

// NormalizeQuery lowercases a search query and strips hyphens so that
// "052-123" matches a stored "0521234567".
func NormalizeQuery(q string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(q)), "-", "")
}

// ValidatePhone checks the normalized 10-digit form.
func ValidatePhone(phone string) error {
	if !phoneRegexp.MatchString(phone) {
		return apperr.Validation("phone", "must be exactly 10 digits")
	}
	return nil
}

// ValidateFullName requires at least two space-separated tokens of two or
// more letters each, i.e. a first and a last name.
func ValidateFullName(name string) error {
	tokens := strings.Fields(name)
	if len(tokens) < 2 {
		return apperr.Validation("name", "full name required (first and last)")
	}
	for _, tok := range tokens {
		runes := []rune(tok)
		if len(runes) < 2 {
			return apperr.Validation("name", "each name part needs at least 2 letters")
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) {
				return apperr.Validation("name", "names may contain letters only")
			}
		}
	}
	return nil
}

type GuestService struct {
	guests    GuestStore
	seats     SeatStore
	publisher EventPublisher
	index     GuestSearcher
}

func NewGuestService(guests GuestStore, seats SeatStore, publisher EventPublisher, index GuestSearcher) *GuestService {
	return &GuestService{
		guests:    guests,
		seats:     seats,
		publisher: publisher,
		index:     index,
	}
}

// Create registers a new guest record. Phone and name are validated at the
// boundary; a duplicate phone is rejected before any write.
func (s *GuestService) Create(ctx context.Context, req *models.CreateGuestRequest) (*models.Guest, error) {
	return s.create(ctx, req, "admin")
}

func (s *GuestService) create(ctx context.Context, req *models.CreateGuestRequest, source string) (*models.Guest, error) {
	name := strings.TrimSpace(req.Name)
	if err := ValidateFullName(name); err != nil {
		return nil, err
	}

	phone := NormalizePhone(req.Phone)
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}

	existing, err := s.guests.GetByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if existing != nil {
		return nil, apperr.Validation("phone", "already registered")
	}

	numGuests := 1
	if req.NumGuests != nil {
		if *req.NumGuests < 0 {
			return nil, apperr.Validation("num_guests", "must not be negative")
		}
		numGuests = *req.NumGuests
	}

	userType := req.UserType
	if userType == "" {
		userType = models.RoleGuest
	}

	guest := &models.Guest{
		Name:       name,
		Phone:      phone,
		UserType:   userType,
		Attendance: models.AttendanceUnknown,
		NumGuests:  numGuests,
		Area:       strings.TrimSpace(req.Area),
	}

	if err := s.guests.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}

	s.reindex(ctx, guest)
	s.publish(ctx, models.EventGuestCreated, models.GuestCreatedEvent{
		GuestID:   guest.ID,
		Phone:     guest.Phone,
		Source:    source,
		Timestamp: time.Now(),
	})

	return guest, nil
}

// Update applies a sparse field set on top of the stored record. Everything
// is validated before the single write, so a rejected update changes nothing.
func (s *GuestService) Update(ctx context.Context, id int64, req *models.UpdateGuestRequest) (*models.Guest, error) {
	guest, err := s.guests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	if guest == nil {
		return nil, apperr.ErrNotFound
	}
	if req.Empty() {
		return guest, nil
	}

	updated := *guest

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := ValidateFullName(name); err != nil {
			return nil, err
		}
		updated.Name = name
	}

	if req.Phone != nil {
		phone := NormalizePhone(*req.Phone)
		if err := ValidatePhone(phone); err != nil {
			return nil, err
		}
		if phone != guest.Phone {
			other, err := s.guests.GetByPhone(ctx, phone)
			if err != nil {
				return nil, fmt.Errorf("failed to check phone: %w", err)
			}
			if other != nil {
				return nil, apperr.Validation("phone", "already registered")
			}
		}
		updated.Phone = phone
	}

	if req.Attendance != nil {
		switch *req.Attendance {
		case models.AttendanceUnknown, models.AttendanceYes, models.AttendanceNo:
			updated.Attendance = *req.Attendance
		default:
			return nil, apperr.Validation("attendance", "must be unknown, yes or no")
		}
	}

	if req.NumGuests != nil {
		if *req.NumGuests < 0 {
			return nil, apperr.Validation("num_guests", "must not be negative")
		}
		updated.NumGuests = *req.NumGuests
	}

	if req.Area != nil {
		updated.Area = strings.TrimSpace(*req.Area)
	}

	applyMeal := func(dst *int, v *int, field string) error {
		if v == nil {
			return nil
		}
		if *v < 0 {
			return apperr.Validation(field, "must not be negative")
		}
		*dst = *v
		return nil
	}
	if err := applyMeal(&updated.Meals.Vegan, req.Vegan, "vegan"); err != nil {
		return nil, err
	}
	if err := applyMeal(&updated.Meals.Kids, req.Kids, "kids"); err != nil {
		return nil, err
	}
	if err := applyMeal(&updated.Meals.Meat, req.Meat, "meat"); err != nil {
		return nil, err
	}
	if err := applyMeal(&updated.Meals.GlutenFree, req.GlutenFree, "gluten_free"); err != nil {
		return nil, err
	}

	if updated.Meals.Total() > updated.NumGuests {
		return nil, apperr.Validation("meals",
			fmt.Sprintf("meal counts total %d exceeds guest count %d", updated.Meals.Total(), updated.NumGuests))
	}

	if req.Notes != nil {
		updated.Notes = *req.Notes
	}
	if req.Transport != nil {
		updated.Transport = *req.Transport
	}

	if err := s.guests.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update guest: %w", err)
	}

	s.reindex(ctx, &updated)
	s.publish(ctx, models.EventGuestUpdated, models.GuestUpdatedEvent{
		GuestID:   updated.ID,
		Timestamp: time.Now(),
	})

	return &updated, nil
}

// GetByID returns a single guest or apperr.ErrNotFound.
func (s *GuestService) GetByID(ctx context.Context, id int64) (*models.Guest, error) {
	guest, err := s.guests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	if guest == nil {
		return nil, apperr.ErrNotFound
	}
	return guest, nil
}

// List searches guests by a case-insensitive, hyphen-normalized name/phone
// substring. With the search index configured the query goes there first;
// on any index failure it falls back to the store.
func (s *GuestService) List(ctx context.Context, query string) ([]models.Guest, error) {
	normalized := NormalizeQuery(query)

	if s.index != nil && normalized != "" {
		ids, err := s.index.Search(ctx, normalized)
		if err == nil {
			guests := make([]models.Guest, 0, len(ids))
			for _, id := range ids {
				g, err := s.guests.GetByID(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("failed to get guest %d: %w", id, err)
				}
				if g != nil {
					guests = append(guests, *g)
				}
			}
			return guests, nil
		}
		logger.WithContext(ctx).Warn("Guest index search failed, falling back to store",
			"error", err, "query", normalized)
	}

	guests, err := s.guests.List(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

// Responses decorates guest records with their derived seating numbers.
func (s *GuestService) Responses(ctx context.Context, guests []models.Guest) ([]models.GuestResponse, error) {
	result := make([]models.GuestResponse, len(guests))
	for i, g := range guests {
		assigned, err := s.seats.CountByOwner(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count seats for guest %d: %w", g.ID, err)
		}
		result[i] = models.NewGuestResponse(g, assigned)
	}
	return result, nil
}

// Response decorates one guest record.
func (s *GuestService) Response(ctx context.Context, g *models.Guest) (*models.GuestResponse, error) {
	assigned, err := s.seats.CountByOwner(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count seats: %w", err)
	}
	resp := models.NewGuestResponse(*g, assigned)
	return &resp, nil
}

func (s *GuestService) reindex(ctx context.Context, g *models.Guest) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexGuest(ctx, g); err != nil {
		logger.WithContext(ctx).Error("Failed to index guest", "error", err, "guest_id", g.ID)
	}
}

func (s *GuestService) publish(ctx context.Context, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "error", err, "subject", subject)
	}
}
