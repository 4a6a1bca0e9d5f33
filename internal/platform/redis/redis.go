// Package redis holds the Redis-backed helpers: a client constructor and the
// delivery guard that keeps redelivered tasks from emailing twice.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces guard keys.
const DefaultKeyPrefix = "forum-notifier:delivered:"

// ErrEmptyKey is returned when a guard operation is given no key.
var ErrEmptyKey = errors.New("delivery guard key cannot be empty")

// NewClient parses a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

// DeliveryGuard records which notifications were sent so a redelivered task
// does not send the same email again.
type DeliveryGuard struct {
	client goredis.Cmdable
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewDeliveryGuard creates a guard that remembers deliveries for ttl.
func NewDeliveryGuard(client goredis.Cmdable, ttl time.Duration) *DeliveryGuard {
	return &DeliveryGuard{
		client: client,
		ttl:    ttl,
		prefix: DefaultKeyPrefix,
		now:    time.Now,
	}
}

// Acquire claims key. It returns true only for the first caller within the TTL.
func (g *DeliveryGuard) Acquire(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	ok, err := g.client.SetNX(ctx, g.prefix+key, g.now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire delivery guard %s: %w", key, err)
	}
	return ok, nil
}

// Release forgets key, allowing a later attempt to send again.
func (g *DeliveryGuard) Release(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return fmt.Errorf("release delivery guard %s: %w", key, err)
	}
	return nil
}
