package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"simcha/internal/config"
	"simcha/internal/database"
	"simcha/internal/repository"

	"github.com/joho/godotenv"
)

var (
	areas    = flag.String("areas", "hall", "Comma-separated area names to seed")
	tables   = flag.Int("tables", 10, "Number of tables to create per area")
	capacity = flag.Int("capacity", 12, "Seats per table")
	dryRun   = flag.Bool("dry-run", false, "Show what would be created without making changes")
)

// seeder builds the initial venue layout: a block of numbered tables per
// area, each a run of free seats. Running it again appends tables after
// the highest existing number instead of duplicating.
type seeder struct {
	seats *repository.SeatRepository
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if *tables <= 0 || *capacity <= 0 {
		slog.Error("tables and capacity must be positive")
		os.Exit(1)
	}

	slog.Info("Starting venue seeder...")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	s := &seeder{seats: repos.Seats}

	if err := s.seedAreas(context.Background()); err != nil {
		slog.Error("Failed to seed venue", "error", err)
		os.Exit(1)
	}

	slog.Info("Venue seeding completed successfully!")
}

func (s *seeder) seedAreas(ctx context.Context) error {
	for _, area := range strings.Split(*areas, ",") {
		area = strings.TrimSpace(area)
		if area == "" {
			continue
		}
		if err := s.seedArea(ctx, area); err != nil {
			return fmt.Errorf("area %q: %w", area, err)
		}
	}
	return nil
}

func (s *seeder) seedArea(ctx context.Context, area string) error {
	start, err := s.seats.MaxTableNumber(ctx, area)
	if err != nil {
		return fmt.Errorf("failed to read existing tables: %w", err)
	}

	if *dryRun {
		slog.Info("Would create tables",
			"area", area,
			"from", start+1,
			"to", start+*tables,
			"seats_per_table", *capacity)
		return nil
	}

	created := 0
	for n := start + 1; n <= start+*tables; n++ {
		if _, err := s.seats.CreateTable(ctx, area, n, *capacity); err != nil {
			return fmt.Errorf("failed to create table %d: %w", n, err)
		}
		created += *capacity
	}

	slog.Info("Created tables",
		"area", area,
		"tables", *tables,
		"seats", created)
	return nil
}
