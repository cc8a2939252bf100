package domain

import "errors"

var (
	// The trip parameters cannot produce a schedule (bad day count, time window or date).
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// Scheduling was requested with an empty selection.
	ErrNoWaypointsSelected = errors.New("no waypoints selected")

	ErrTripNotFound         = errors.New("trip not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrWaypointNotScheduled = errors.New("waypoint is not part of the schedule")
)
