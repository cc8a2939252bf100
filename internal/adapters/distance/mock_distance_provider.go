package distance

import (
	"context"
	"fmt"
	"sync"
	"time"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   int
	Seconds  int
}

// MockDistanceProvider serves fixed results for known coordinate pairs.
// Err and Delay simulate an unavailable or slow routing service.
type MockDistanceProvider struct {
	m     map[string]ports.DistanceResult
	Err   error
	Delay time.Duration

	mu    sync.Mutex
	calls int
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.DistanceResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ports.DistanceResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	if p.Err != nil {
		return ports.DistanceResult{}, p.Err
	}

	r, ok := p.m[origin.Key()+"|"+destination.Key()]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q", origin.Key(), destination.Key())
	}

	return r, nil
}

// Calls returns how many lookups were made.
func (p *MockDistanceProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
