package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"simcha/internal/apperr"
	"simcha/internal/logger"
	"simcha/internal/models"
)

// RSVPService is the guest-facing slice of the lifecycle: identify by
// phone, answer yes/no, declare the party. It never assigns seats - that
// stays an admin action; this flow only writes the declarative fields the
// allocation engine later consumes.
type RSVPService struct {
	guestSvc  *GuestService
	guests    GuestStore
	publisher EventPublisher
}

func NewRSVPService(guestSvc *GuestService, guests GuestStore, publisher EventPublisher) *RSVPService {
	return &RSVPService{
		guestSvc:  guestSvc,
		guests:    guests,
		publisher: publisher,
	}
}

// Login resolves a phone number to a guest record. An unknown phone does
// not silently create a record: the caller must retry with ConfirmNew set,
// which is the "yes, that number is right" step guarding against typos.
// The boolean result reports whether a record was created.
func (s *RSVPService) Login(ctx context.Context, req *models.RSVPLoginRequest) (*models.Guest, bool, error) {
	name := strings.TrimSpace(req.Name)
	if err := ValidateFullName(name); err != nil {
		return nil, false, err
	}

	phone := NormalizePhone(req.Phone)
	if err := ValidatePhone(phone); err != nil {
		return nil, false, err
	}

	guest, err := s.guests.GetByPhone(ctx, phone)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up phone: %w", err)
	}
	if guest != nil {
		return guest, false, nil
	}

	if !req.ConfirmNew {
		return nil, false, apperr.ErrPhoneUnconfirmed
	}

	guest, err = s.guestSvc.create(ctx, &models.CreateGuestRequest{
		Name:  name,
		Phone: phone,
	}, "rsvp")
	if err != nil {
		return nil, false, err
	}

	logger.WithContext(ctx).Info("Self-registered new guest", "guest_id", guest.ID)
	return guest, true, nil
}

// SetAttendance persists the yes/no answer. "No" ends the flow right here;
// the record stays (declining guests are never deleted).
func (s *RSVPService) SetAttendance(ctx context.Context, guestID int64, coming bool) (*models.Guest, error) {
	attendance := models.AttendanceNo
	if coming {
		attendance = models.AttendanceYes
	}

	return s.guestSvc.Update(ctx, guestID, &models.UpdateGuestRequest{
		Attendance: &attendance,
	})
}

// SaveParty records the declared party: guest count, meal breakdown,
// optional transport need, and - only when none is stored yet - the area
// choice. Meal counters are capped so the cross-category sum never
// exceeds the guest count; a violating save is rejected whole.
func (s *RSVPService) SaveParty(ctx context.Context, req *models.RSVPPartyRequest) (*models.Guest, error) {
	guest, err := s.guestSvc.GetByID(ctx, req.GuestID)
	if err != nil {
		return nil, err
	}
	if guest.Attendance != models.AttendanceYes {
		return nil, apperr.ErrInvalidStage
	}

	if req.NumGuests < 0 {
		return nil, apperr.Validation("num_guests", "must not be negative")
	}

	update := &models.UpdateGuestRequest{
		NumGuests:  &req.NumGuests,
		Vegan:      &req.Meals.Vegan,
		Kids:       &req.Meals.Kids,
		Meat:       &req.Meals.Meat,
		GlutenFree: &req.Meals.GlutenFree,
	}
	if req.Transport != "" {
		update.Transport = &req.Transport
	}

	// The area question is only asked while no preference is stored;
	// a later admin assignment owns that field from then on.
	if area := strings.TrimSpace(req.Area); area != "" && guest.Area == "" {
		update.Area = &area
	}

	updated, err := s.guestSvc.Update(ctx, req.GuestID, update)
	if err != nil {
		return nil, err
	}

	s.publishSaved(ctx, updated.ID)
	return updated, nil
}

func (s *RSVPService) publishSaved(ctx context.Context, guestID int64) {
	if s.publisher == nil {
		return
	}
	event := models.GuestUpdatedEvent{GuestID: guestID, Timestamp: time.Now()}
	if err := s.publisher.Publish(models.EventGuestUpdated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err, "subject", models.EventGuestUpdated)
	}
}
