package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by GetJSON when the key is absent
var ErrMiss = errors.New("cache miss")

// Redis wraps the shared Redis client
type Redis struct {
	Client *redis.Client
}

// NewRedis parses redisURL and verifies connectivity
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &Redis{Client: client}, nil
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.Client.Close()
}

// Health pings Redis
func (r *Redis) Health(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// GetJSON loads key into v. A missing key yields ErrMiss.
func (r *Redis) GetJSON(ctx context.Context, key string, v any) error {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v under key for ttl
func (r *Redis) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: marshal error: %w", err)
	}
	return r.Client.Set(ctx, key, data, ttl).Err()
}

// Key builds a namespaced key from the case-folded parts. The parts are
// hashed so free-text input never ends up in key names.
func Key(namespace string, parts ...string) string {
	raw := strings.ToLower(strings.Join(parts, ":"))
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("pawpals:%s:%x", namespace, hash[:12])
}
