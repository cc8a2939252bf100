package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"trip-scheduler-service/internal/domain"
	"trip-scheduler-service/internal/platform/obs"
	"trip-scheduler-service/internal/ports"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL        = "https://api.openrouteservice.org"
	DefaultProfile        = "driving-car"
	DefaultGeocodeCountry = "IN"
)

type ORSOptions struct {
	BaseURL string
	Profile string
	// Outbound requests per second across all callers. Zero disables limiting.
	RequestsPerSecond float64
	GeocodeCountry    string
	HTTPClient        *http.Client
}

var _ ports.DistanceMatrixProvider = (*ORSDistanceProvider)(nil)

// ORSDistanceProvider implements DistanceProvider, DistanceMatrixProvider and
// Geocoder using OpenRouteService.
//
// It coordinates:
//   - Persistent distance caching keyed by coordinates
//   - Persistent geocode caching keyed by normalized place names
//   - Rate limited external API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSDistanceProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	limiter       *rate.Limiter
	retryBackoff  time.Duration
	distanceCache ports.DistanceCache
	geocodeCache  ports.GeocodeCache
}

func NewORSDistanceProvider(
	apiKey string,
	opts ORSOptions,
	distanceCache ports.DistanceCache,
	geocodeCache ports.GeocodeCache,
) (*ORSDistanceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDistanceProvider{
		session:       opts.HTTPClient,
		apiKey:        apiKey,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		profile:       opts.Profile,
		country:       opts.GeocodeCountry,
		retryBackoff:  200 * time.Millisecond,
		distanceCache: distanceCache,
		geocodeCache:  geocodeCache,
	}

	if provider.session == nil {
		provider.session = &http.Client{Timeout: 10 * time.Second}
	}
	if provider.baseURL == "" {
		provider.baseURL = DefaultBaseURL
	}
	if provider.profile == "" {
		provider.profile = DefaultProfile
	}
	if opts.RequestsPerSecond > 0 {
		burst := max(int(opts.RequestsPerSecond), 1)
		provider.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSDistanceProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Delegate to batched path to reuse caching and matrix logic.
func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.DistanceResult, error) {
	results, err := o.GetDistances(ctx, origin, []domain.Coordinates{destination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf(
			"get distances %s -> %s: %w",
			origin.Key(), destination.Key(), err,
		)
	}

	return results[0], nil
}

// Compute distances from a single origin to many destinations. The result is
// aligned with destinations; a destination equal to the origin costs nothing.
func (o *ORSDistanceProvider) GetDistances(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ []ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	if !origin.Valid() {
		return nil, fmt.Errorf("origin %s is not a valid coordinate", origin.Key())
	}

	if len(destinations) == 0 {
		return []ports.DistanceResult{}, nil
	}

	originKey := origin.Key()

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]string, 0, len(destinations))
	coordsByKey := make(map[string]domain.Coordinates, len(destinations))
	for _, d := range destinations {
		if !d.Valid() {
			return nil, fmt.Errorf("destination %s is not a valid coordinate", d.Key())
		}

		k := d.Key()
		if k == originKey {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		destList = append(destList, k)
		coordsByKey[k] = d
	}

	destinationHits := make(map[string]ports.DistanceResult)
	// Check persistent distance cache before issuing external API calls.
	if o.distanceCache != nil && len(destList) > 0 {
		hits, err := o.distanceCache.GetMany(ctx, originKey, destList)
		if err != nil {
			log.Printf("distance cache read failed origin=%s err=%v", originKey, err)
		} else {
			destinationHits = hits
		}
	}

	destinationMisses := make([]string, 0, len(destList))
	missCoords := make([]domain.Coordinates, 0, len(destList))
	for _, d := range destList {
		if _, ok := destinationHits[d]; !ok {
			destinationMisses = append(destinationMisses, d)
			missCoords = append(missCoords, coordsByKey[d])
		}
	}

	fetched := map[string]ports.DistanceResult{}
	if len(destinationMisses) > 0 {
		// Fetch a single origin->many matrix row for all cache misses.
		fetched, err = o.fetchMatrixRow(ctx, origin, destinationMisses, missCoords)
		if err != nil {
			return nil, fmt.Errorf("fetching matrix row: %w", err)
		}

		if o.distanceCache != nil {
			if err := o.distanceCache.PutMany(ctx, originKey, fetched); err != nil {
				log.Printf("distance cache write failed: %v", err)
			}
		}
	}

	out := make([]ports.DistanceResult, len(destinations))
	for i, d := range destinations {
		k := d.Key()
		if k == originKey {
			continue
		}
		if r, ok := destinationHits[k]; ok {
			out[i] = r
			continue
		}
		out[i] = fetched[k]
	}

	return out, nil
}

// Geocode resolves a place name, consulting the geocode cache first.
func (o *ORSDistanceProvider) Geocode(ctx context.Context, text string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := o.normalize(text)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: text must be non-empty")
	}

	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, []string{norm})
		if err != nil {
			log.Printf("geocode cache read failed text=%q err=%v", norm, err)
		} else if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	c, err := o.geocodeOne(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{norm: c}); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return c, nil
}
