package jobstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, b.Set(ctx, "k", []byte("v")))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, b.Delete(ctx, "k"))
	_, err = b.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, b.Delete(ctx, "never-set"))
}

func TestBigCacheBackend(t *testing.T) {
	b, err := NewBigCacheBackend(context.Background(), time.Minute)
	require.NoError(t, err)
	defer b.Close()
	exerciseBackend(t, b)
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("JOBS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOBS_TEST_REDIS_ADDR not set, skipping redis backend test")
	}
	b, err := OpenBackend(context.Background(), RedisOptions{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	defer b.Close()
	_, ok := b.(*RedisBackend)
	require.True(t, ok)
	exerciseBackend(t, b)
}

func TestOpenBackend_DefaultsToBigCache(t *testing.T) {
	b, err := OpenBackend(context.Background(), RedisOptions{TTL: time.Minute})
	require.NoError(t, err)
	defer b.Close()
	_, ok := b.(*BigCacheBackend)
	assert.True(t, ok)
}

func TestNewRedisBackend_RejectsBadURL(t *testing.T) {
	_, err := NewRedisBackend(RedisOptions{Addr: "redis://localhost:6379/notadb"})
	assert.Error(t, err)
}
