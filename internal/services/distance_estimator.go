package services

import (
	"math"
	"trip-scheduler-service/internal/domain"
)

const (
	EarthRadiusKm = 6371.0

	// Single speed profile for local roads and traffic. Inter-city legs are
	// estimated with the same constant; road lookups refine them when available.
	DefaultAverageSpeedKmh = 40.0
)

// DistanceEstimator converts straight-line distance into travel time
// at a fixed average speed.
type DistanceEstimator struct {
	SpeedKmh float64
}

func NewDistanceEstimator(speedKmh float64) DistanceEstimator {
	if speedKmh <= 0 || math.IsNaN(speedKmh) {
		speedKmh = DefaultAverageSpeedKmh
	}
	return DistanceEstimator{SpeedKmh: speedKmh}
}

// DistanceKm returns the great-circle distance between a and b (haversine).
// NaN inputs propagate.
func DistanceKm(a, b domain.Coordinates) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func (e DistanceEstimator) DistanceKm(a, b domain.Coordinates) float64 {
	return DistanceKm(a, b)
}

// EstimateDurationMinutes returns ceil(km / speed * 60). It never returns a
// negative value; the minimum travel clamp belongs to the caller.
func (e DistanceEstimator) EstimateDurationMinutes(distanceKm float64) int {
	if distanceKm <= 0 || math.IsNaN(distanceKm) {
		return 0
	}

	speed := e.SpeedKmh
	if speed <= 0 {
		speed = DefaultAverageSpeedKmh
	}

	return int(math.Ceil(distanceKm / speed * 60))
}
