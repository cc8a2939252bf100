package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/platform/db"

	"github.com/jackc/pgx/v5"
)

// Postgres-backed ScheduleStore for deployments that share schedules between
// instances. Same layout as the SQLite store: one JSONB document per trip and
// a separate visits table.
type PostgresScheduleStore struct {
	db db.Querier
}

func NewPostgresScheduleStore(q db.Querier) *PostgresScheduleStore {
	return &PostgresScheduleStore{db: q}
}

// EnsureSchema creates the store's tables when missing.
func (s *PostgresScheduleStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS trip_schedules (
			trip_id TEXT PRIMARY KEY,
			schedule_id TEXT NOT NULL,
			payload JSONB NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS trip_schedule_visits (
			trip_id TEXT NOT NULL REFERENCES trip_schedules(trip_id) ON DELETE CASCADE,
			waypoint_id TEXT NOT NULL,
			visited BOOLEAN NOT NULL,
			visited_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (trip_id, waypoint_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schedule schema: %w", err)
	}
	return nil
}

func (s *PostgresScheduleStore) SaveSchedule(ctx context.Context, tripID string, schedule *domain.Schedule) error {
	if schedule == nil {
		return errors.New("save schedule: schedule is nil")
	}

	payload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("save schedule: marshal: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save schedule: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM trip_schedule_visits WHERE trip_id=$1`, tripID); err != nil {
		return fmt.Errorf("save schedule: clear visits: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trip_schedules (trip_id, schedule_id, payload, generated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (trip_id) DO UPDATE
		SET schedule_id=EXCLUDED.schedule_id, payload=EXCLUDED.payload, generated_at=EXCLUDED.generated_at
	`, tripID, schedule.ID, payload, schedule.GeneratedAt)
	if err != nil {
		return fmt.Errorf("save schedule trip=%s: %w", tripID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save schedule: commit tx: %w", err)
	}
	return nil
}

func (s *PostgresScheduleStore) loadPayload(ctx context.Context, tripID string) (*domain.Schedule, error) {
	var payload []byte
	err := s.db.QueryRow(ctx, `SELECT payload FROM trip_schedules WHERE trip_id=$1`, tripID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}

	var schedule domain.Schedule
	if err := json.Unmarshal(payload, &schedule); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &schedule, nil
}

func (s *PostgresScheduleStore) GetSchedule(ctx context.Context, tripID string) (*domain.Schedule, error) {
	schedule, err := s.loadPayload(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("get schedule trip=%s: %w", tripID, err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT waypoint_id, visited, visited_at
		FROM trip_schedule_visits
		WHERE trip_id=$1
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("get schedule trip=%s: query visits: %w", tripID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var waypointID string
		var visited bool
		var at time.Time
		if err := rows.Scan(&waypointID, &visited, &at); err != nil {
			return nil, fmt.Errorf("get schedule trip=%s: scan visit: %w", tripID, err)
		}
		schedule.MarkVisited(waypointID, visited, at.UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get schedule trip=%s: row iteration: %w", tripID, err)
	}

	return schedule, nil
}

func (s *PostgresScheduleStore) MarkVisited(ctx context.Context, tripID, waypointID string, visited bool, at time.Time) error {
	schedule, err := s.loadPayload(ctx, tripID)
	if err != nil {
		return fmt.Errorf("mark visited trip=%s: %w", tripID, err)
	}
	if !slices.Contains(schedule.ScheduledWaypointIDs(), waypointID) {
		return fmt.Errorf("mark visited trip=%s waypoint=%s: %w", tripID, waypointID, domain.ErrWaypointNotScheduled)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO trip_schedule_visits (trip_id, waypoint_id, visited, visited_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (trip_id, waypoint_id) DO UPDATE
		SET visited=EXCLUDED.visited, visited_at=EXCLUDED.visited_at
	`, tripID, waypointID, visited, at)
	if err != nil {
		return fmt.Errorf("mark visited trip=%s waypoint=%s: %w", tripID, waypointID, err)
	}
	return nil
}

func (s *PostgresScheduleStore) DeleteSchedule(ctx context.Context, tripID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trip_schedules WHERE trip_id=$1`, tripID)
	if err != nil {
		return fmt.Errorf("delete schedule trip=%s: %w", tripID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete schedule trip=%s: %w", tripID, domain.ErrScheduleNotFound)
	}
	return nil
}
