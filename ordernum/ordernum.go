// Package ordernum issues human-readable order numbers.
package ordernum

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type Generator interface {
	Next(ctx context.Context) (string, error)
}

const timestampLayout = "20060102150405"

// RandomGenerator produces ORD<UTC timestamp>-<8 hex chars>. It needs no
// shared state, and the unique index on orders catches the rare collision.
type RandomGenerator struct {
	Now func() time.Time
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{Now: time.Now}
}

func (g *RandomGenerator) Next(_ context.Context) (string, error) {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD%s-%s", g.Now().UTC().Format(timestampLayout), suffix), nil
}

// incrementer is the slice of the redis client the sequence needs.
type incrementer interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
}

const sequenceKey = "restaurant:orders:sequence"

// RedisGenerator takes numbers from an atomic INCR counter so concurrent
// checkouts never race for the same value.
type RedisGenerator struct {
	client incrementer
	Now    func() time.Time
}

func NewRedisGenerator(client incrementer) *RedisGenerator {
	return &RedisGenerator{client: client, Now: time.Now}
}

func (g *RedisGenerator) Next(ctx context.Context) (string, error) {
	seq, err := g.client.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return "", fmt.Errorf("order sequence: %w", err)
	}
	return fmt.Sprintf("ORD%s%06d", g.Now().UTC().Format("20060102"), seq), nil
}
