package services

import (
	"context"
	"strings"
	"testing"
	"trip-scheduler-service/internal/adapters/distance"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/ports"
)

func TestRefineMixedResults(t *testing.T) {
	provider := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: bangalore, To: mysore, Meters: 143500, Seconds: 10830},
	})
	r := &LegRefiner{Provider: provider}

	origin := domain.PlaceRef{Name: "Bangalore", Location: bangalore}
	w1 := domain.PlaceRef{ID: "w1", Name: "Mysore", Location: mysore}
	w2 := domain.PlaceRef{ID: "w2", Name: "Hubli", Location: hubli}

	legs := []domain.TravelLeg{
		{From: origin, To: w1, DistanceKm: 128, DurationMinutes: 193, Source: domain.LegSourceEstimate},
		{From: w1, To: w2, DistanceKm: 378.4, DurationMinutes: 568, Source: domain.LegSourceEstimate},
	}

	out, warnings := r.Refine(context.Background(), legs)

	if out[0].Source != domain.LegSourceRoad || out[0].DurationMinutes != 181 || out[0].DistanceKm != 143.5 {
		t.Fatalf("first leg = %+v", out[0])
	}
	if out[1].Source != domain.LegSourceEstimate || out[1].DurationMinutes != 568 {
		t.Fatalf("second leg should keep estimate, got %+v", out[1])
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Mysore -> Hubli") {
		t.Fatalf("warnings = %v", warnings)
	}
	if out[1].Warning != warnings[0] {
		t.Fatalf("leg warning = %q", out[1].Warning)
	}
	if legs[0].Source != domain.LegSourceEstimate {
		t.Fatalf("input legs must not be modified")
	}
}

func TestRefineSkipsDegenerateLegs(t *testing.T) {
	provider := distance.NewMockDistanceProvider(nil)
	r := &LegRefiner{Provider: provider}

	same := domain.PlaceRef{Name: "Here", Location: mysore}
	legs := []domain.TravelLeg{
		{From: same, To: same},
		{From: same, To: domain.PlaceRef{Name: "Bad", Location: domain.Coordinates{Lat: 200}}},
	}

	out, warnings := r.Refine(context.Background(), legs)
	if provider.Calls() != 0 {
		t.Fatalf("provider should not be called, got %d calls", provider.Calls())
	}
	if len(warnings) != 0 || len(out) != 2 {
		t.Fatalf("out=%v warnings=%v", out, warnings)
	}
}

func TestRefineNilRefiner(t *testing.T) {
	var r *LegRefiner
	legs := []domain.TravelLeg{{DurationMinutes: 10}}

	out, warnings := r.Refine(context.Background(), legs)
	if len(out) != 1 || out[0].DurationMinutes != 10 || warnings != nil {
		t.Fatalf("out=%v warnings=%v", out, warnings)
	}
}

type matrixStub struct {
	*distance.MockDistanceProvider
	batches int
}

func (m *matrixStub) GetDistances(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]ports.DistanceResult, error) {
	m.batches++
	out := make([]ports.DistanceResult, len(destinations))
	for i := range destinations {
		out[i] = ports.DistanceResult{DistanceMeters: (i + 1) * 1000, DurationSeconds: (i + 1) * 600}
	}
	return out, nil
}

func TestRefineBatchesSharedOrigin(t *testing.T) {
	stub := &matrixStub{MockDistanceProvider: distance.NewMockDistanceProvider(nil)}
	r := &LegRefiner{Provider: stub, Concurrency: 1}

	origin := domain.PlaceRef{Name: "Bangalore", Location: bangalore}
	legs := []domain.TravelLeg{
		{From: origin, To: domain.PlaceRef{Name: "Mysore", Location: mysore}},
		{From: origin, To: domain.PlaceRef{Name: "Hubli", Location: hubli}},
	}

	out, warnings := r.Refine(context.Background(), legs)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if stub.batches != 1 || stub.Calls() != 0 {
		t.Fatalf("batches=%d single calls=%d", stub.batches, stub.Calls())
	}
	if out[0].DurationMinutes != 10 || out[1].DurationMinutes != 20 || out[1].DistanceKm != 2 {
		t.Fatalf("out = %+v", out)
	}
}
