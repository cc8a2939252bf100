package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"trip-scheduler-service/internal/domain"
)

// flexFloat accepts a JSON number or a numeric string. Anything else leaves
// it unset so the record can be reported instead of failing the whole file.
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.v, f.ok = v, true
	}
	return nil
}

type flexInt struct {
	flexFloat
}

func (f flexInt) int() int { return int(f.v) }

type LocationSeed struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Latitude             flexFloat `json:"latitude"`
	Longitude            flexFloat `json:"longitude"`
	Lat                  flexFloat `json:"lat"`
	Lon                  flexFloat `json:"lon"`
	TypicalVisitDuration flexInt   `json:"typical_visit_duration"`
	VisitDuration        flexInt   `json:"visit_duration"`
	District             string    `json:"district"`
	DistrictName         string    `json:"district_name"`
}

// Waypoint normalizes the alternative field spellings found in catalog exports.
func (l LocationSeed) Waypoint() (domain.Waypoint, error) {
	w := domain.Waypoint{
		ID:       strings.TrimSpace(l.ID),
		Name:     strings.TrimSpace(l.Name),
		District: strings.TrimSpace(l.District),
	}
	if w.District == "" {
		w.District = strings.TrimSpace(l.DistrictName)
	}

	if w.ID == "" {
		return domain.Waypoint{}, errors.New("id cannot be empty")
	}
	if w.Name == "" {
		return domain.Waypoint{}, fmt.Errorf("location %s: name cannot be empty", w.ID)
	}

	lat, lon := l.Latitude, l.Longitude
	if !lat.ok {
		lat = l.Lat
	}
	if !lon.ok {
		lon = l.Lon
	}
	if !lat.ok || !lon.ok {
		return domain.Waypoint{}, fmt.Errorf("location %s: missing or non-numeric coordinates", w.ID)
	}
	w.Location = domain.Coordinates{Lat: lat.v, Lon: lon.v}
	if !w.Location.Valid() {
		return domain.Waypoint{}, fmt.Errorf("location %s: coordinates out of range", w.ID)
	}

	switch {
	case l.TypicalVisitDuration.ok:
		w.VisitMinutes = l.TypicalVisitDuration.int()
	case l.VisitDuration.ok:
		w.VisitMinutes = l.VisitDuration.int()
	}
	if w.VisitMinutes < 0 {
		w.VisitMinutes = 0
	}

	return w, nil
}

type TripSeed struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	NumDays       int    `json:"num_days"`
	StartLocation struct {
		Name      string    `json:"name"`
		Latitude  flexFloat `json:"latitude"`
		Longitude flexFloat `json:"longitude"`
	} `json:"start_location"`
	PreferredStartTime string `json:"preferred_start_time"`
	PreferredEndTime   string `json:"preferred_end_time"`
	StartDate          string `json:"start_date"`
}

// Trip converts the seed record. A start location without coordinates is kept
// with zero coordinates and resolved by name when a schedule is planned.
func (t TripSeed) Trip() (domain.Trip, error) {
	trip := domain.Trip{
		ID:        strings.TrimSpace(t.ID),
		Title:     strings.TrimSpace(t.Title),
		NumDays:   t.NumDays,
		StartDate: strings.TrimSpace(t.StartDate),
		StartLocation: domain.PlaceRef{
			Name: strings.TrimSpace(t.StartLocation.Name),
		},
	}
	if trip.ID == "" {
		return domain.Trip{}, errors.New("id cannot be empty")
	}
	if t.StartLocation.Latitude.ok && t.StartLocation.Longitude.ok {
		trip.StartLocation.Location = domain.Coordinates{Lat: t.StartLocation.Latitude.v, Lon: t.StartLocation.Longitude.v}
	}

	var err error
	if trip.DayStart, err = domain.ParseClock(t.PreferredStartTime); err != nil {
		return domain.Trip{}, fmt.Errorf("trip %s: preferred_start_time: %w", trip.ID, err)
	}
	if trip.DayEnd, err = domain.ParseClock(t.PreferredEndTime); err != nil {
		return domain.Trip{}, fmt.Errorf("trip %s: preferred_end_time: %w", trip.ID, err)
	}

	return trip, nil
}

type seedFile struct {
	Locations []LocationSeed `json:"locations"`
	Trips     []TripSeed     `json:"trips"`
}

type SeedResult struct {
	Locations int
	Trips     int
	Skipped   int
}

// ParseSeed decodes a seed document. It accepts either an object with
// "locations" and "trips" or a bare array of locations. Malformed records are
// skipped and counted.
func ParseSeed(data []byte) ([]domain.Waypoint, []domain.Trip, int, error) {
	var doc seedFile
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Locations); err != nil {
			return nil, nil, 0, fmt.Errorf("parse json: %w", err)
		}
	} else if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, 0, fmt.Errorf("parse json: %w", err)
	}

	skipped := 0
	waypoints := make([]domain.Waypoint, 0, len(doc.Locations))
	for i, l := range doc.Locations {
		w, err := l.Waypoint()
		if err != nil {
			log.Printf("seed: skipping location #%d: %v", i+1, err)
			skipped++
			continue
		}
		waypoints = append(waypoints, w)
	}

	trips := make([]domain.Trip, 0, len(doc.Trips))
	for i, ts := range doc.Trips {
		t, err := ts.Trip()
		if err != nil {
			log.Printf("seed: skipping trip #%d: %v", i+1, err)
			skipped++
			continue
		}
		trips = append(trips, t)
	}

	return waypoints, trips, skipped, nil
}

// Populate the database with catalog and trip data from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (SeedResult, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	waypoints, trips, skipped, err := ParseSeed(data)
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}

	if err := NewSqliteWaypointRepository(db).SaveWaypoints(ctx, waypoints); err != nil {
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}

	tripRepo := NewSqliteTripRepository(db)
	for _, t := range trips {
		if err := tripRepo.SaveTrip(ctx, t); err != nil {
			return SeedResult{}, fmt.Errorf("seed: %w", err)
		}
	}

	return SeedResult{Locations: len(waypoints), Trips: len(trips), Skipped: skipped}, nil
}
