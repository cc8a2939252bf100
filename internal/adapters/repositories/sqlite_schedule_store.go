package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
	"trip-scheduler-service/internal/domain"
)

// SQLite-backed implementation of the ScheduleStore port.
//
// The generated schedule is stored as one JSON document per trip. Visited
// flags live in their own table and are laid over the document on load, so
// marking a visit never rewrites the schedule.
type SqliteScheduleStore struct{ DB *sql.DB }

func NewSqliteScheduleStore(db *sql.DB) *SqliteScheduleStore {
	return &SqliteScheduleStore{DB: db}
}

// Replace the trip's schedule. Visited flags of the previous schedule are cleared.
func (s *SqliteScheduleStore) SaveSchedule(ctx context.Context, tripID string, schedule *domain.Schedule) error {
	if s.DB == nil {
		return errors.New("sqlite schedule store: DB is nil")
	}
	if schedule == nil {
		return errors.New("save schedule: schedule is nil")
	}

	payload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("save schedule: marshal: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save schedule: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE trip_id = ?;`, tripID); err != nil {
		return fmt.Errorf("save schedule: clear visits: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO schedules (
		trip_id,
		schedule_id,
		payload,
		generated_at
	)
	VALUES (?, ?, ?, ?);
	`, tripID, schedule.ID, string(payload), schedule.GeneratedAt.Unix())
	if err != nil {
		return fmt.Errorf("save schedule trip=%s: %w", tripID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save schedule: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteScheduleStore) loadPayload(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, tripID string) (*domain.Schedule, error) {
	var payload string
	err := q.QueryRowContext(ctx, `SELECT payload FROM schedules WHERE trip_id = ?;`, tripID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}

	var schedule domain.Schedule
	if err := json.Unmarshal([]byte(payload), &schedule); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &schedule, nil
}

// Load the trip's schedule with visited flags applied.
func (s *SqliteScheduleStore) GetSchedule(ctx context.Context, tripID string) (*domain.Schedule, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite schedule store: DB is nil")
	}

	schedule, err := s.loadPayload(ctx, s.DB, tripID)
	if err != nil {
		return nil, fmt.Errorf("get schedule trip=%s: %w", tripID, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		waypoint_id,
		visited,
		visited_at
	FROM visits
	WHERE trip_id = ?;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("get schedule trip=%s: query visits: %w", tripID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var waypointID string
		var visited bool
		var at int64
		if err := rows.Scan(&waypointID, &visited, &at); err != nil {
			return nil, fmt.Errorf("get schedule trip=%s: scan visit: %w", tripID, err)
		}
		schedule.MarkVisited(waypointID, visited, time.Unix(at, 0).UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get schedule trip=%s: row iteration: %w", tripID, err)
	}

	return schedule, nil
}

// Record the visited flag for a scheduled waypoint.
func (s *SqliteScheduleStore) MarkVisited(ctx context.Context, tripID, waypointID string, visited bool, at time.Time) error {
	if s.DB == nil {
		return errors.New("sqlite schedule store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark visited: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	schedule, err := s.loadPayload(ctx, tx, tripID)
	if err != nil {
		return fmt.Errorf("mark visited trip=%s: %w", tripID, err)
	}
	if !slices.Contains(schedule.ScheduledWaypointIDs(), waypointID) {
		return fmt.Errorf("mark visited trip=%s waypoint=%s: %w", tripID, waypointID, domain.ErrWaypointNotScheduled)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO visits (
		trip_id,
		waypoint_id,
		visited,
		visited_at
	)
	VALUES (?, ?, ?, ?);
	`, tripID, waypointID, visited, at.Unix())
	if err != nil {
		return fmt.Errorf("mark visited trip=%s waypoint=%s: %w", tripID, waypointID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark visited: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteScheduleStore) DeleteSchedule(ctx context.Context, tripID string) error {
	if s.DB == nil {
		return errors.New("sqlite schedule store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete schedule: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE trip_id = ?;`, tripID); err != nil {
		return fmt.Errorf("delete schedule trip=%s: clear visits: %w", tripID, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE trip_id = ?;`, tripID)
	if err != nil {
		return fmt.Errorf("delete schedule trip=%s: %w", tripID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete schedule trip=%s: %w", tripID, domain.ErrScheduleNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete schedule: commit tx: %w", err)
	}

	return nil
}
