package services

import (
	"fmt"
	"strings"
	"trip-scheduler-service/internal/domain"
)

// SelectWaypoints resolves a selection of ids against the catalog. The result
// keeps the order of ids, drops duplicates and skips ids that are unknown or
// point at a location without usable coordinates. Each skip yields a warning.
func SelectWaypoints(catalog []domain.Waypoint, ids []string) ([]domain.Waypoint, []string) {
	warnings := []string{}

	byID := make(map[string]domain.Waypoint, len(catalog))
	for _, w := range catalog {
		byID[w.ID] = w
	}

	seen := make(map[string]struct{}, len(ids))
	out := make([]domain.Waypoint, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		w, ok := byID[id]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("location %s not found in catalog", id))
			continue
		}
		if !w.Location.Valid() {
			warnings = append(warnings, fmt.Sprintf("location %s skipped: invalid coordinates", w.Name))
			continue
		}

		out = append(out, w)
	}

	return out, warnings
}
