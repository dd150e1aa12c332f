// Package cache holds the Redis-backed view cache for admin-facing
// aggregates. Invalidation is path-scoped and fire-and-forget: the lifecycle
// layer signals that a view is stale, nothing more.
package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carepulse/intake-platform/pkg/logging"
)

// AdminView caches rendered dashboard payloads under a path-scoped key.
type AdminView struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// Options configures the Redis connection for the view cache.
type Options struct {
	Addr     string
	Password string
	TLS      bool
	TTL      time.Duration
}

// NewAdminView connects a view cache. Returns nil when no address is
// configured; callers treat a nil cache as "no caching".
func NewAdminView(opts Options, logger *logging.Logger) *AdminView {
	if opts.Addr == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	redisOpts := &redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
	}
	if opts.TLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return NewAdminViewWithClient(redis.NewClient(redisOpts), opts.TTL, logger)
}

// NewAdminViewWithClient wraps an existing Redis client. Tests use this with
// miniredis.
func NewAdminViewWithClient(client *redis.Client, ttl time.Duration, logger *logging.Logger) *AdminView {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminView{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func viewKey(path string) string {
	return "views:" + path
}

// GetView returns the cached payload for path, or (nil, nil) on a miss.
func (c *AdminView) GetView(ctx context.Context, path string) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	body, err := c.client.Get(ctx, viewKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get view %s: %w", path, err)
	}
	return body, nil
}

// SetView stores a rendered payload for path with the configured TTL.
func (c *AdminView) SetView(ctx context.Context, path string, body []byte) error {
	if c == nil {
		return nil
	}
	if err := c.client.Set(ctx, viewKey(path), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set view %s: %w", path, err)
	}
	return nil
}

// Revalidate drops the cached payload for path so the next read rebuilds it.
func (c *AdminView) Revalidate(ctx context.Context, path string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, viewKey(path)).Err(); err != nil {
		return fmt.Errorf("cache: revalidate %s: %w", path, err)
	}
	c.logger.Debug("view invalidated", "path", path)
	return nil
}
