package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createGuestsTable,
		createSeatsTable,
		createSeatsOwnerIndex,
		createSeatsTableIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createGuestsTable = `
CREATE TABLE IF NOT EXISTS guests (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    phone VARCHAR(10) UNIQUE NOT NULL,
    user_type VARCHAR(20) NOT NULL DEFAULT 'guest',
    attendance VARCHAR(10) NOT NULL DEFAULT 'unknown',
    num_guests INTEGER NOT NULL DEFAULT 1,
    area TEXT NOT NULL DEFAULT '',
    vegan INTEGER NOT NULL DEFAULT 0,
    kids INTEGER NOT NULL DEFAULT 0,
    meat INTEGER NOT NULL DEFAULT 0,
    gluten_free INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    transport TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (num_guests >= 0),
    CHECK (vegan >= 0 AND kids >= 0 AND meat >= 0 AND gluten_free >= 0),
    CHECK (attendance IN ('unknown', 'yes', 'no'))
);`

const createSeatsTable = `
CREATE TABLE IF NOT EXISTS seats (
    id SERIAL PRIMARY KEY,
    area TEXT NOT NULL,
    table_number INTEGER NOT NULL,
    row_number INTEGER NOT NULL,
    owner_id INTEGER REFERENCES guests(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(area, table_number, row_number)
);`

const createSeatsOwnerIndex = `
CREATE INDEX IF NOT EXISTS seats_owner_idx ON seats (owner_id) WHERE owner_id IS NOT NULL;`

const createSeatsTableIndex = `
CREATE INDEX IF NOT EXISTS seats_area_table_idx ON seats (area, table_number);`
