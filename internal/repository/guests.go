package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"simcha/internal/database"
	"simcha/internal/models"
)

type GuestRepository struct {
	db *database.DB
}

func NewGuestRepository(db *database.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

const guestColumns = `id, name, phone, user_type, attendance, num_guests, area,
       vegan, kids, meat, gluten_free, notes, transport`

func scanGuest(row interface{ Scan(...any) error }) (*models.Guest, error) {
	g := &models.Guest{}
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Phone,
		&g.UserType,
		&g.Attendance,
		&g.NumGuests,
		&g.Area,
		&g.Meals.Vegan,
		&g.Meals.Kids,
		&g.Meals.Meat,
		&g.Meals.GlutenFree,
		&g.Notes,
		&g.Transport,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GuestRepository) Create(ctx context.Context, g *models.Guest) error {
	query := `
		INSERT INTO guests (name, phone, user_type, attendance, num_guests, area,
		                    vegan, kids, meat, gluten_free, notes, transport)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		g.Name, g.Phone, g.UserType, g.Attendance, g.NumGuests, g.Area,
		g.Meals.Vegan, g.Meals.Kids, g.Meals.Meat, g.Meals.GlutenFree,
		g.Notes, g.Transport,
	).Scan(&g.ID)
}

func (r *GuestRepository) GetByID(ctx context.Context, id int64) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	g, err := scanGuest(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *GuestRepository) GetByPhone(ctx context.Context, phone string) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE phone = $1`
	g, err := scanGuest(r.db.QueryRowContext(ctx, query, phone))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

// List returns every guest, or - when query is non-empty - only those whose
// name or phone contains it. The caller is expected to pass a normalized
// query (lowercase, separators stripped); phones are stored normalized.
func (r *GuestRepository) List(ctx context.Context, query string) ([]models.Guest, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if strings.TrimSpace(query) == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+guestColumns+` FROM guests ORDER BY id`)
	} else {
		like := "%" + query + "%"
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+guestColumns+` FROM guests
			 WHERE lower(name) LIKE $1 OR phone LIKE $1
			 ORDER BY id`, like)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}

	return guests, rows.Err()
}

// Update writes the full record back. Callers build the record by applying
// a sparse request on top of the stored one, so unspecified fields survive.
func (r *GuestRepository) Update(ctx context.Context, g *models.Guest) error {
	query := `
		UPDATE guests
		SET name = $1, phone = $2, user_type = $3, attendance = $4,
		    num_guests = $5, area = $6, vegan = $7, kids = $8, meat = $9,
		    gluten_free = $10, notes = $11, transport = $12, updated_at = NOW()
		WHERE id = $13`

	result, err := r.db.ExecContext(ctx, query,
		g.Name, g.Phone, g.UserType, g.Attendance, g.NumGuests, g.Area,
		g.Meals.Vegan, g.Meals.Kids, g.Meals.Meat, g.Meals.GlutenFree,
		g.Notes, g.Transport, g.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Areas returns the distinct area preferences guests have expressed,
// excluding the empty one.
func (r *GuestRepository) Areas(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT area FROM guests WHERE area <> '' ORDER BY area`)
	if err != nil {
		return nil, fmt.Errorf("failed to query guest areas: %w", err)
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
