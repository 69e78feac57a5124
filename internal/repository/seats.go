package repository

import (
	"context"
	"database/sql"
	"fmt"

	"simcha/internal/database"
	"simcha/internal/models"
)

type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

const seatColumns = `id, area, table_number, row_number, owner_id`

func scanSeat(row interface{ Scan(...any) error }) (*models.Seat, error) {
	s := &models.Seat{}
	if err := row.Scan(&s.ID, &s.Area, &s.TableNumber, &s.Row, &s.OwnerID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SeatRepository) collect(rows *sql.Rows) ([]models.Seat, error) {
	defer rows.Close()

	var seats []models.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *s)
	}
	return seats, rows.Err()
}

// List returns seats, optionally filtered by area and/or owner.
func (r *SeatRepository) List(ctx context.Context, area string, ownerID *int64) ([]models.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats`
	var (
		args     []interface{}
		where    []string
		argIndex = 1
	)

	if area != "" {
		where = append(where, fmt.Sprintf("area = $%d", argIndex))
		args = append(args, area)
		argIndex++
	}
	if ownerID != nil {
		where = append(where, fmt.Sprintf("owner_id = $%d", argIndex))
		args = append(args, *ownerID)
		argIndex++
	}

	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY area, table_number, row_number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListByTable returns the seats of one (area, table) in display order.
func (r *SeatRepository) ListByTable(ctx context.Context, area string, tableNumber int) ([]models.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats
		 WHERE area = $1 AND table_number = $2
		 ORDER BY row_number`, area, tableNumber)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListByOwner returns every seat a guest currently holds.
func (r *SeatRepository) ListByOwner(ctx context.Context, guestID int64) ([]models.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats
		 WHERE owner_id = $1
		 ORDER BY area, table_number, row_number`, guestID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// Claim marks a single seat as owned by the guest. The update is
// conditional: it succeeds only while the seat is free or already the
// guest's, so a race with another writer loses cleanly instead of
// double-owning.
func (r *SeatRepository) Claim(ctx context.Context, seatID, guestID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE seats SET owner_id = $1, updated_at = NOW()
		 WHERE id = $2 AND (owner_id IS NULL OR owner_id = $1)`, guestID, seatID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Release clears the given seat regardless of owner.
func (r *SeatRepository) Release(ctx context.Context, seatID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE seats SET owner_id = NULL, updated_at = NOW() WHERE id = $1`, seatID)
	return err
}

// ReleaseByOwner clears every seat the guest holds and returns the freed ids.
func (r *SeatRepository) ReleaseByOwner(ctx context.Context, guestID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`UPDATE seats SET owner_id = NULL, updated_at = NOW()
		 WHERE owner_id = $1
		 RETURNING id`, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReleaseByOwnerExcept clears the guest's seats at every table other than
// (area, tableNumber). Used when a guest moves tables: one table at a time.
func (r *SeatRepository) ReleaseByOwnerExcept(ctx context.Context, guestID int64, area string, tableNumber int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`UPDATE seats SET owner_id = NULL, updated_at = NOW()
		 WHERE owner_id = $1 AND NOT (area = $2 AND table_number = $3)
		 RETURNING id`, guestID, area, tableNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByOwner returns how many seats the guest currently holds.
func (r *SeatRepository) CountByOwner(ctx context.Context, guestID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seats WHERE owner_id = $1`, guestID).Scan(&count)
	return count, err
}

// MaxTableNumber returns the highest table number in an area, 0 when the
// area has no seats yet.
func (r *SeatRepository) MaxTableNumber(ctx context.Context, area string) (int, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(table_number) FROM seats WHERE area = $1`, area).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

// CreateTable inserts capacity seats with a fresh table number and rows
// numbered 1..capacity.
func (r *SeatRepository) CreateTable(ctx context.Context, area string, tableNumber, capacity int) ([]models.Seat, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	seats := make([]models.Seat, 0, capacity)
	for row := 1; row <= capacity; row++ {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO seats (area, table_number, row_number)
			 VALUES ($1, $2, $3)
			 RETURNING id`, area, tableNumber, row).Scan(&id)
		if err != nil {
			return nil, err
		}
		seats = append(seats, models.Seat{
			ID:          id,
			Area:        area,
			TableNumber: tableNumber,
			Row:         row,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return seats, nil
}

// Areas returns the distinct areas that have at least one seat.
func (r *SeatRepository) Areas(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT area FROM seats ORDER BY area`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}
