package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"trip-scheduler-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const distanceKeyPrefix = "trip:distance:"

// RedisDistanceCache shares road metrics between service instances.
// Each origin->destination pair is one JSON value expiring after TTL.
type RedisDistanceCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{Client: client, TTL: ttl}
}

func distanceKey(origin, destination string) string {
	return distanceKeyPrefix + origin + "|" + destination
}

func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (map[string]ports.DistanceResult, error) {
	if c.Client == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}

	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	keys := make([]string, len(uniq))
	for i, d := range uniq {
		keys[i] = distanceKey(origin, d)
	}

	vals, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: mget: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		var r ports.DistanceResult
		if err := json.Unmarshal([]byte(s), &r); err != nil {
			log.Printf("distance cache: dropping corrupt entry key=%s err=%v", keys[i], err)
			continue
		}
		out[uniq[i]] = r
	}

	return out, nil
}

func (c *RedisDistanceCache) PutMany(ctx context.Context, origin string, results map[string]ports.DistanceResult) error {
	if c.Client == nil {
		return errors.New("distance cache: redis client is nil")
	}

	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	_, err := c.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for dest, r := range results {
			if dest == "" {
				return errors.New("empty destination key")
			}
			b, err := json.Marshal(r)
			if err != nil {
				return err
			}
			pipe.Set(ctx, distanceKey(origin, dest), b, c.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert distance cache: %w", err)
	}

	return nil
}
