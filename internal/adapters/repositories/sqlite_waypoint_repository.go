package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"trip-scheduler-service/internal/domain"
)

// SQLite-backed implementation of the WaypointRepository port.
type SqliteWaypointRepository struct{ DB *sql.DB }

func NewSqliteWaypointRepository(db *sql.DB) *SqliteWaypointRepository {
	return &SqliteWaypointRepository{DB: db}
}

// Return the requested waypoints, or the whole catalog when ids is empty.
// Unknown ids are ignored; callers compare the result against their selection.
func (s *SqliteWaypointRepository) ListWaypoints(ctx context.Context, ids []string) ([]domain.Waypoint, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite waypoint repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		lat,
		lon,
		visit_minutes,
		district
	FROM locations
	`
	args := make([]any, 0, len(ids))
	if len(ids) > 0 {
		for _, id := range ids {
			args = append(args, id)
		}
		query += fmt.Sprintf("WHERE id IN (%s)\n", strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","))
	}
	query += "ORDER BY name, id;"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list waypoints: query locations table: %w", err)
	}
	defer rows.Close()

	waypoints := make([]domain.Waypoint, 0, 64)
	for rows.Next() {
		var w domain.Waypoint
		err := rows.Scan(&w.ID, &w.Name, &w.Location.Lat, &w.Location.Lon, &w.VisitMinutes, &w.District)
		if err != nil {
			return nil, fmt.Errorf("list waypoints: scan row: %w", err)
		}
		waypoints = append(waypoints, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list waypoints: row iteration: %w", err)
	}

	return waypoints, nil
}

// Insert or replace catalog entries.
func (s *SqliteWaypointRepository) SaveWaypoints(ctx context.Context, waypoints []domain.Waypoint) error {
	if s.DB == nil {
		return errors.New("sqlite waypoint repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save waypoints: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO locations (
		id,
		name,
		lat,
		lon,
		visit_minutes,
		district
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save waypoints: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range waypoints {
		_, err := stmt.ExecContext(ctx, w.ID, w.Name, w.Location.Lat, w.Location.Lon, w.VisitMinutes, w.District)
		if err != nil {
			return fmt.Errorf("save waypoints: insert id=%s: %w", w.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save waypoints: commit tx: %w", err)
	}

	return nil
}
