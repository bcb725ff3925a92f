package ordernum

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 5, 4, 18, 30, 15, 0, time.UTC) }

func TestRandomGenerator(t *testing.T) {
	g := NewRandomGenerator()
	g.Now = fixedNow

	seen := map[string]bool{}
	pattern := regexp.MustCompile(`^ORD20260504183015-[0-9A-F]{8}$`)
	for i := 0; i < 200; i++ {
		n, err := g.Next(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, pattern, n)
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
}

type fakeCounter struct {
	n   int64
	err error
	key string
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.key = key
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.n++
	return redis.NewIntResult(f.n, nil)
}

func TestRedisGenerator(t *testing.T) {
	counter := &fakeCounter{n: 41}
	g := NewRedisGenerator(counter)
	g.Now = fixedNow

	first, err := g.Next(context.Background())
	require.NoError(t, err)
	second, err := g.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ORD20260504000042", first)
	assert.Equal(t, "ORD20260504000043", second)
	assert.Equal(t, sequenceKey, counter.key)
}

func TestRedisGeneratorError(t *testing.T) {
	g := NewRedisGenerator(&fakeCounter{err: errors.New("connection refused")})
	_, err := g.Next(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}
