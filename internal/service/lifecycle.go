package service

import (
	"context"
	"fmt"
	"sync"

	"simcha/internal/apperr"
	"simcha/internal/models"
)

// Lifecycle stages. These are session state owned by this controller, not
// guest-record columns: the store only ever holds attendance and counts.
const (
	StageDetails   = "details"
	StageSeats     = "seats"
	StageConfirmed = "confirmed"
)

type session struct {
	stage string
}

// LifecycleService drives the admin editing workflow for one guest at a
// time: details -> seats -> confirmed, forward-only, with an explicit back
// transition from seats and a full reset from anywhere.
type LifecycleService struct {
	mu       sync.Mutex
	sessions map[int64]*session

	guestSvc *GuestService
	seats    SeatStore
	alloc    *AllocationService
	tables   *TableService
}

func NewLifecycleService(guestSvc *GuestService, seats SeatStore, alloc *AllocationService, tables *TableService) *LifecycleService {
	return &LifecycleService{
		sessions: make(map[int64]*session),
		guestSvc: guestSvc,
		seats:    seats,
		alloc:    alloc,
		tables:   tables,
	}
}

// Start opens (or reopens) an editing session at the details stage.
func (s *LifecycleService) Start(ctx context.Context, guestID int64) (*models.SessionResponse, error) {
	guest, err := s.guestSvc.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[guestID] = &session{stage: StageDetails}
	s.mu.Unlock()

	return &models.SessionResponse{GuestID: guestID, Stage: StageDetails, Guest: *guest}, nil
}

func (s *LifecycleService) get(guestID int64) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[guestID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return sess, nil
}

// SaveDetails persists only the fields that differ from the stored record.
// When the area preference moves away from a seated area the old seats are
// released immediately so they cannot linger against the new preference.
// The session advances to the seats stage only when the guest is seatable
// (coming, with a positive party size); otherwise it stays at details and
// the invalid-state condition is reported.
func (s *LifecycleService) SaveDetails(ctx context.Context, guestID int64, req *models.SessionDetailsRequest) (*models.SessionResponse, error) {
	sess, err := s.get(guestID)
	if err != nil {
		return nil, err
	}
	if sess.stage != StageDetails {
		return nil, apperr.ErrInvalidStage
	}

	guest, err := s.guestSvc.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}

	// Diff against the stored record; untouched fields are not written.
	update := &models.UpdateGuestRequest{}
	dirty := false
	areaChanged := false

	if req.Attendance != nil && *req.Attendance != guest.Attendance {
		update.Attendance = req.Attendance
		dirty = true
	}
	if req.NumGuests != nil && *req.NumGuests != guest.NumGuests {
		update.NumGuests = req.NumGuests
		dirty = true
	}
	if req.Area != nil && *req.Area != guest.Area {
		update.Area = req.Area
		dirty = true
		areaChanged = true
	}

	if dirty {
		guest, err = s.guestSvc.Update(ctx, guestID, update)
		if err != nil {
			return nil, err
		}
	}

	// The update is validated and written first; seats in the old area are
	// released only once the new preference is actually stored.
	if areaChanged {
		held, err := s.seats.CountByOwner(ctx, guestID)
		if err != nil {
			return nil, fmt.Errorf("failed to count held seats: %w", err)
		}
		if held > 0 {
			if _, err := s.alloc.ReleaseArea(ctx, guestID); err != nil {
				return nil, fmt.Errorf("failed to release seats on area change: %w", err)
			}
		}
	}

	resp := &models.SessionResponse{GuestID: guestID, Stage: StageDetails, Guest: *guest}

	if guest.Attendance != models.AttendanceYes || guest.NumGuests <= 0 {
		return resp, apperr.ErrInvalidStage
	}

	sess.stage = StageSeats
	resp.Stage = StageSeats
	return resp, nil
}

// ListTables serves the seat-picking stage: every table in the guest's
// preferred area (or all areas when no preference is set), with free
// counts computed for this guest. Always read fresh from the store - other
// guests may have claimed seats since the last look.
func (s *LifecycleService) ListTables(ctx context.Context, guestID int64) ([]models.TableInfo, error) {
	sess, err := s.get(guestID)
	if err != nil {
		return nil, err
	}
	if sess.stage != StageSeats {
		return nil, apperr.ErrInvalidStage
	}

	guest, err := s.guestSvc.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}

	return s.tables.ListTables(ctx, guest.Area, guestID)
}

// Confirm seats the guest at the chosen table. A capacity error keeps the
// session at the seats stage so the admin can refresh and pick again.
func (s *LifecycleService) Confirm(ctx context.Context, guestID int64, area string, tableNumber int) (*models.SessionResponse, error) {
	sess, err := s.get(guestID)
	if err != nil {
		return nil, err
	}
	if sess.stage != StageSeats {
		return nil, apperr.ErrInvalidStage
	}

	guest, _, err := s.alloc.AssignToTable(ctx, guestID, area, tableNumber)
	if err != nil {
		return nil, err
	}

	summary, err := s.tables.Summary(ctx, guestID)
	if err != nil {
		return nil, err
	}

	sess.stage = StageConfirmed
	return &models.SessionResponse{
		GuestID: guestID,
		Stage:   StageConfirmed,
		Guest:   *guest,
		Summary: summary,
	}, nil
}

// Back returns from seat picking to the details stage.
func (s *LifecycleService) Back(ctx context.Context, guestID int64) (*models.SessionResponse, error) {
	sess, err := s.get(guestID)
	if err != nil {
		return nil, err
	}
	if sess.stage != StageSeats {
		return nil, apperr.ErrInvalidStage
	}

	guest, err := s.guestSvc.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}

	sess.stage = StageDetails
	return &models.SessionResponse{GuestID: guestID, Stage: StageDetails, Guest: *guest}, nil
}

// Reset drops the session entirely.
func (s *LifecycleService) Reset(guestID int64) {
	s.mu.Lock()
	delete(s.sessions, guestID)
	s.mu.Unlock()
}

// Stage reports the current session stage, or "" when no session exists.
func (s *LifecycleService) Stage(guestID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[guestID]; ok {
		return sess.stage
	}
	return ""
}

// ReserveList is the standing worklist of guests who confirmed attendance
// but hold no seats. It is a live filter over the two stores, never a
// stored flag, so it cannot drift from actual ownership.
func (s *LifecycleService) ReserveList(ctx context.Context) ([]models.GuestResponse, error) {
	guests, err := s.guestSvc.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var reserve []models.GuestResponse
	for _, g := range guests {
		if g.Attendance != models.AttendanceYes || g.NumGuests <= 0 {
			continue
		}
		held, err := s.seats.CountByOwner(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count seats for guest %d: %w", g.ID, err)
		}
		if held == 0 {
			reserve = append(reserve, models.NewGuestResponse(g, 0))
		}
	}
	return reserve, nil
}
