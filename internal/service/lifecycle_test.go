package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simcha/internal/apperr"
	"simcha/internal/models"
)

func TestLifecycle_FullFlow(t *testing.T) {
	svc, guests, seats, _ := newTestServices()
	ctx := context.Background()

	seats.addTable("hall", 1, 12)
	guest := createTestGuest(t, guests, "Dana Levi", "0500000001", 3)

	resp, err := svc.Lifecycle.Start(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, StageDetails, resp.Stage)

	resp, err = svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{
		Attendance: strPtr(models.AttendanceYes),
		Area:       strPtr("hall"),
	})
	require.NoError(t, err)
	assert.Equal(t, StageSeats, resp.Stage)

	tables, err := svc.Lifecycle.ListTables(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 12, tables[0].FreeForGuest)

	resp, err = svc.Lifecycle.Confirm(ctx, guest.ID, "hall", 1)
	require.NoError(t, err)
	assert.Equal(t, StageConfirmed, resp.Stage)
	require.Len(t, resp.Summary, 1)
	assert.Equal(t, 3, resp.Summary[0].Count)

	held, err := seats.CountByOwner(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, held)
}

func TestLifecycle_StartRequiresExistingGuest(t *testing.T) {
	svc, _, _, _ := newTestServices()

	_, err := svc.Lifecycle.Start(context.Background(), 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLifecycle_DetailsGateSeatsStage(t *testing.T) {
	svc, guests, _, _ := newTestServices()
	ctx := context.Background()

	guest := createTestGuest(t, guests, "Dana Levi", "0500000001", 3)
	guest.Attendance = models.AttendanceUnknown
	require.NoError(t, guests.Update(ctx, guest))

	_, err := svc.Lifecycle.Start(ctx, guest.ID)
	require.NoError(t, err)

	// Not coming yet: the save succeeds but the stage stays at details.
	resp, err := svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{
		NumGuests: intPtr(4),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidStage)
	require.NotNil(t, resp)
	assert.Equal(t, StageDetails, resp.Stage)
	assert.Equal(t, 4, resp.Guest.NumGuests)
	assert.Equal(t, StageDetails, svc.Lifecycle.Stage(guest.ID))

	// Declined guests cannot reach the seats stage either.
	resp, err = svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{
		Attendance: strPtr(models.AttendanceNo),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidStage)
	assert.Equal(t, models.AttendanceNo, resp.Guest.Attendance)
}

func TestLifecycle_AreaChangeReleasesSeats(t *testing.T) {
	svc, guests, seats, _ := newTestServices()
	ctx := context.Background()

	seats.addTable("hall", 1, 12)
	seats.addTable("garden", 1, 12)
	guest := createTestGuest(t, guests, "Dana Levi", "0500000001", 3)

	_, _, err := svc.Allocation.AssignToTable(ctx, guest.ID, "hall", 1)
	require.NoError(t, err)

	_, err = svc.Lifecycle.Start(ctx, guest.ID)
	require.NoError(t, err)

	_, err = svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{
		Area: strPtr("garden"),
	})
	require.NoError(t, err)

	held, err := seats.CountByOwner(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, held)
}

func TestLifecycle_RejectedDetailsSaveKeepsSeats(t *testing.T) {
	ctx := context.Background()

	// An area change bundled with a field that fails validation must not
	// touch the seats: the whole save is rejected as one unit.
	t.Run("invalid attendance", func(t *testing.T) {
		svc, guests, seats, _ := newTestServices()
		seats.addTable("hall", 1, 12)
		guest := createTestGuest(t, guests, "Dana Levi", "0500000001", 4)

		_, _, err := svc.Allocation.AssignToTable(ctx, guest.ID, "hall", 1)
		require.NoError(t, err)
		_, err = svc.Lifecycle.Start(ctx, guest.ID)
		require.NoError(t, err)

		_, err = svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{
			Attendance: strPtr("maybe"),
			Area:       strPtr("garden"),
		})
		assert.True(t, apperr.IsValidation(err))

		held, err := seats.CountByOwner(ctx, guest.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, held)

		stored, err := svc.Guests.GetByID(ctx, guest.ID)
		require.NoError(t, err)
		assert.Equal(t, "hall", stored.Area)
	})

	t.Run("count below meal total", func(t *testing.T) {
		svc, guests, seats, _ := newTestServices()
		seats.addTable("hall", 1, 12)
		guest := createTestGuest(t, guests, "Dana Levi", "0500000002", 4)

		_, err := svc.Guests.Update(ctx, guest.ID, &models.UpdateGuestRequest{
			Meat: intPtr(4),
		})
		require.NoError(t, err)
		_, _, err = svc.Allocation.AssignToTable(ctx, guest.ID, "hall", 1)
		require.NoError(t, err)
		_, err = svc.Lifecycle.Start(ctx, guest.ID)
		require.NoError(t, err)

		_, err = svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{
			NumGuests: intPtr(2),
			Area:      strPtr("garden"),
		})
		assert.True(t, apperr.IsValidation(err))

		held, err := seats.CountByOwner(ctx, guest.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, held)
	})
}

func TestLifecycle_UnchangedAreaKeepsSeats(t *testing.T) {
	svc, guests, seats, _ := newTestServices()
	ctx := context.Background()

	seats.addTable("hall", 1, 12)
	guest := createTestGuest(t, guests, "Dana Levi", "0500000001", 3)

	_, _, err := svc.Allocation.AssignToTable(ctx, guest.ID, "hall", 1)
	require.NoError(t, err)

	_, err = svc.Lifecycle.Start(ctx, guest.ID)
	require.NoError(t, err)

	// Saving the same area is not a change; the seats stay.
	_, err = svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{
		Area: strPtr("hall"),
	})
	require.NoError(t, err)

	held, err := seats.CountByOwner(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, held)
}

func TestLifecycle_StageEnforcement(t *testing.T) {
	svc, guests, seats, _ := newTestServices()
	ctx := context.Background()

	seats.addTable("hall", 1, 12)
	guest := createTestGuest(t, guests, "Dana Levi", "0500000001", 3)

	// No session at all.
	_, err := svc.Lifecycle.Confirm(ctx, guest.ID, "hall", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Lifecycle.Start(ctx, guest.ID)
	require.NoError(t, err)

	// Details stage: seat operations rejected.
	_, err = svc.Lifecycle.Confirm(ctx, guest.ID, "hall", 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidStage)
	_, err = svc.Lifecycle.ListTables(ctx, guest.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidStage)
	_, err = svc.Lifecycle.Back(ctx, guest.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidStage)
}

func TestLifecycle_BackAndReset(t *testing.T) {
	svc, guests, seats, _ := newTestServices()
	ctx := context.Background()

	seats.addTable("hall", 1, 12)
	guest := createTestGuest(t, guests, "Dana Levi", "0500000001", 3)

	_, err := svc.Lifecycle.Start(ctx, guest.ID)
	require.NoError(t, err)
	_, err = svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{})
	require.NoError(t, err)
	assert.Equal(t, StageSeats, svc.Lifecycle.Stage(guest.ID))

	resp, err := svc.Lifecycle.Back(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, StageDetails, resp.Stage)

	svc.Lifecycle.Reset(guest.ID)
	assert.Equal(t, "", svc.Lifecycle.Stage(guest.ID))

	// Re-starting after a confirm begins over at details.
	_, err = svc.Lifecycle.Start(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, StageDetails, svc.Lifecycle.Stage(guest.ID))
}

func TestLifecycle_CapacityErrorKeepsSeatsStage(t *testing.T) {
	svc, guests, seats, _ := newTestServices()
	ctx := context.Background()

	seats.addTable("hall", 1, 4)
	guest := createTestGuest(t, guests, "Dana Levi", "0500000001", 6)

	_, err := svc.Lifecycle.Start(ctx, guest.ID)
	require.NoError(t, err)
	_, err = svc.Lifecycle.SaveDetails(ctx, guest.ID, &models.SessionDetailsRequest{})
	require.NoError(t, err)

	_, err = svc.Lifecycle.Confirm(ctx, guest.ID, "hall", 1)
	require.Error(t, err)
	assert.True(t, apperr.IsCapacity(err))
	assert.Equal(t, StageSeats, svc.Lifecycle.Stage(guest.ID))
}

func TestReserveList_LiveFilter(t *testing.T) {
	svc, guests, seats, _ := newTestServices()
	ctx := context.Background()

	seats.addTable("hall", 1, 12)

	coming := createTestGuest(t, guests, "Dana Levi", "0500000001", 3)
	seated := createTestGuest(t, guests, "Noam Peretz", "0500000002", 2)
	declined := createTestGuest(t, guests, "Yael Cohen", "0500000003", 2)
	declined.Attendance = models.AttendanceNo
	require.NoError(t, guests.Update(ctx, declined))
	createTestGuest(t, guests, "Omer Mizrahi", "0500000004", 0)

	_, _, err := svc.Allocation.AssignToTable(ctx, seated.ID, "hall", 1)
	require.NoError(t, err)

	reserve, err := svc.Lifecycle.ReserveList(ctx)
	require.NoError(t, err)
	require.Len(t, reserve, 1)
	assert.Equal(t, coming.ID, reserve[0].ID)
	assert.Equal(t, 3, reserve[0].ReserveCount)

	// Releasing the seated guest puts them back on the worklist.
	_, err = svc.Allocation.ReleaseArea(ctx, seated.ID)
	require.NoError(t, err)

	reserve, err = svc.Lifecycle.ReserveList(ctx)
	require.NoError(t, err)
	assert.Len(t, reserve, 2)
}
