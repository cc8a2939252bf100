package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		visit_minutes INTEGER NOT NULL DEFAULT 0,
		district TEXT NOT NULL DEFAULT ''
	);
	`

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		num_days INTEGER NOT NULL,
		start_name TEXT NOT NULL,
		start_lat REAL NOT NULL,
		start_lon REAL NOT NULL,
		day_start INTEGER NOT NULL,
		day_end INTEGER NOT NULL,
		start_date TEXT NOT NULL DEFAULT ''
	);
	`

	createSchedulesQuery := `
	CREATE TABLE IF NOT EXISTS schedules (
		trip_id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		generated_at INTEGER NOT NULL
	);
	`

	createVisitsQuery := `
	CREATE TABLE IF NOT EXISTS visits (
		trip_id TEXT NOT NULL REFERENCES schedules(trip_id) ON DELETE CASCADE,
		waypoint_id TEXT NOT NULL,
		visited INTEGER NOT NULL,
		visited_at INTEGER NOT NULL,
		PRIMARY KEY (trip_id, waypoint_id)
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		cached_at INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_locations_district
	ON locations(district);
	`

	statements := []string{
		createLocationsQuery,
		createTripsQuery,
		createSchedulesQuery,
		createVisitsQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
