package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"trip-scheduler-service/internal/domain"
)

// SQLite-backed implementation of the TripRepository port.
type SqliteTripRepository struct{ DB *sql.DB }

func NewSqliteTripRepository(db *sql.DB) *SqliteTripRepository {
	return &SqliteTripRepository{DB: db}
}

func (s *SqliteTripRepository) GetTrip(ctx context.Context, id string) (domain.Trip, error) {
	if s.DB == nil {
		return domain.Trip{}, errors.New("sqlite trip repository: DB is nil")
	}

	query := `
	SELECT
		id,
		title,
		num_days,
		start_name,
		start_lat,
		start_lon,
		day_start,
		day_end,
		start_date
	FROM trips
	WHERE id = ?;
	`

	var t domain.Trip
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Title,
		&t.NumDays,
		&t.StartLocation.Name,
		&t.StartLocation.Location.Lat,
		&t.StartLocation.Location.Lon,
		&t.DayStart,
		&t.DayEnd,
		&t.StartDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trip{}, fmt.Errorf("get trip id=%s: %w", id, domain.ErrTripNotFound)
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("get trip id=%s: %w", id, err)
	}

	return t, nil
}

// Insert or replace a trip by id.
func (s *SqliteTripRepository) SaveTrip(ctx context.Context, t domain.Trip) error {
	if s.DB == nil {
		return errors.New("sqlite trip repository: DB is nil")
	}

	query := `
	INSERT OR REPLACE INTO trips (
		id,
		title,
		num_days,
		start_name,
		start_lat,
		start_lon,
		day_start,
		day_end,
		start_date
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := s.DB.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.NumDays,
		t.StartLocation.Name,
		t.StartLocation.Location.Lat,
		t.StartLocation.Location.Lon,
		int(t.DayStart),
		int(t.DayEnd),
		t.StartDate,
	)
	if err != nil {
		return fmt.Errorf("save trip id=%s: %w", t.ID, err)
	}

	return nil
}
