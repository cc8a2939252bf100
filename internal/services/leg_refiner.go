package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/platform/obs"
	"trip-scheduler-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultLookupTimeout     = 5 * time.Second
	DefaultLookupConcurrency = 5
)

// LegRefiner replaces straight-line leg estimates with road distances from a
// DistanceProvider. Ordering is never changed: the refiner runs after
// sequencing and before packing. Any lookup that fails or exceeds the timeout
// keeps its estimate and gets a warning instead of an error.
type LegRefiner struct {
	Provider    ports.DistanceProvider
	Timeout     time.Duration
	Concurrency int
}

type refinedLeg struct {
	result ports.DistanceResult
	err    error
}

// Refine returns a copy of legs with road metrics where available, plus one
// warning per leg that fell back to the estimate.
func (r *LegRefiner) Refine(ctx context.Context, legs []domain.TravelLeg) ([]domain.TravelLeg, []string) {
	var err error
	defer obs.Time(ctx, "legs.Refine")(&err)

	out := make([]domain.TravelLeg, len(legs))
	copy(out, legs)

	if r == nil || r.Provider == nil || len(legs) == 0 {
		return out, nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultLookupConcurrency
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]refinedLeg, len(legs))

	// Legs sharing an origin are batched into one lookup when the provider supports it.
	groups := map[string][]int{}
	groupOrder := []string{}
	for i, leg := range legs {
		if !refinable(leg) {
			continue
		}
		k := leg.From.Location.Key()
		if _, ok := groups[k]; !ok {
			groupOrder = append(groupOrder, k)
		}
		groups[k] = append(groups[k], i)
	}

	mp, batched := r.Provider.(ports.DistanceMatrixProvider)

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, k := range groupOrder {
		idx := groups[k]

		if batched && len(idx) > 1 {
			g.Go(func() error {
				dests := make([]domain.Coordinates, len(idx))
				for j, i := range idx {
					dests[j] = legs[i].To.Location
				}
				res, e := mp.GetDistances(lookupCtx, legs[idx[0]].From.Location, dests)
				for j, i := range idx {
					if e != nil || len(res) != len(idx) {
						results[i] = refinedLeg{err: cmp.Or(e, errors.New("matrix result length mismatch"))}
						continue
					}
					results[i] = refinedLeg{result: res[j]}
				}
				return nil
			})
			continue
		}

		for _, i := range idx {
			leg := legs[i]
			g.Go(func() error {
				res, e := r.Provider.GetDistance(lookupCtx, leg.From.Location, leg.To.Location)
				results[i] = refinedLeg{result: res, err: e}
				return nil
			})
		}
	}
	_ = g.Wait()

	warnings := []string{}
	for i := range out {
		leg := &out[i]
		if !refinable(*leg) {
			continue
		}

		res := results[i]
		if res.err != nil || res.result.DistanceMeters < 0 || res.result.DurationSeconds < 0 {
			reason := "invalid result"
			if res.err != nil {
				reason = res.err.Error()
			}
			log.Printf("travel time lookup failed from=%q to=%q err=%s", leg.From.Name, leg.To.Name, reason)

			leg.Warning = fmt.Sprintf("road travel time unavailable for %s -> %s; using straight-line estimate", leg.From.Name, leg.To.Name)
			warnings = append(warnings, leg.Warning)
			continue
		}

		leg.DistanceKm = float64(res.result.DistanceMeters) / 1000
		leg.DurationMinutes = int(math.Ceil(float64(res.result.DurationSeconds) / 60))
		leg.Source = domain.LegSourceRoad
	}

	if len(warnings) > 0 {
		err = fmt.Errorf("%d of %d legs fell back to estimates", len(warnings), len(legs))
	}

	return out, warnings
}

func refinable(leg domain.TravelLeg) bool {
	return leg.From.Location.Valid() && leg.To.Location.Valid() && leg.From.Location != leg.To.Location
}
