package geocode

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aimerfeng/PawPals/internal/cache"
	"github.com/aimerfeng/PawPals/internal/geo"
	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/rs/zerolog/log"
)

// Cached is a Geocoder that memoizes successful lookups in Redis. Cache
// errors are logged and the lookup falls through to the wrapped geocoder.
type Cached struct {
	next  Geocoder
	redis *cache.Redis
	ttl   time.Duration
}

// NewCached wraps next with a Redis cache. A nil redis returns next unchanged.
func NewCached(next Geocoder, redis *cache.Redis, ttl time.Duration) Geocoder {
	if redis == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cached{next: next, redis: redis, ttl: ttl}
}

// Forward implements Geocoder
func (c *Cached) Forward(ctx context.Context, query string) (*Place, error) {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	key := cache.Key("geocode", "forward", normalized)
	return c.through(ctx, key, func() (*Place, error) {
		return c.next.Forward(ctx, normalized)
	})
}

// Reverse implements Geocoder. Coordinates are keyed at four decimals.
func (c *Cached) Reverse(ctx context.Context, p geo.Point) (*Place, error) {
	key := cache.Key("geocode", "reverse",
		strconv.FormatFloat(p.Lat, 'f', 4, 64), strconv.FormatFloat(p.Lng, 'f', 4, 64))
	place, err := c.through(ctx, key, func() (*Place, error) {
		return c.next.Reverse(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	out := *place
	out.Point = p
	return &out, nil
}

func (c *Cached) through(ctx context.Context, key string, load func() (*Place, error)) (*Place, error) {
	var cached Place
	err := c.redis.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		monitoring.RecordCacheHit("geocode")
		return &cached, nil
	case errors.Is(err, cache.ErrMiss):
		monitoring.RecordCacheMiss("geocode")
	default:
		monitoring.RecordCacheMiss("geocode")
		log.Warn().Err(err).Msg("Geocode cache read failed")
	}

	place, err := load()
	if err != nil {
		return nil, err
	}

	if err := c.redis.SetJSON(ctx, key, place, c.ttl); err != nil {
		log.Warn().Err(err).Msg("Geocode cache write failed")
	}
	return place, nil
}
