package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisPublishClient is the part of *redis.Client the forwarder uses.
type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisForwarder publishes every event as JSON on a Redis channel named
// "<prefix><event type>".
type RedisForwarder struct {
	client  redisPublishClient
	prefix  string
	timeout time.Duration
}

// NewRedisForwarder connects to the Redis server at url (redis://host:port/db).
func NewRedisForwarder(url, prefix string) (*RedisForwarder, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	return &RedisForwarder{client: redis.NewClient(opts), prefix: prefix, timeout: 3 * time.Second}, nil
}

// Forward implements Forwarder.
func (f *RedisForwarder) Forward(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.client.Publish(ctx, f.prefix+event.Type, body).Err()
}

// Close closes the Redis connection
func (f *RedisForwarder) Close() error {
	return f.client.Close()
}

var _ Forwarder = (*RedisForwarder)(nil)
