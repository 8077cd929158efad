package jobstore

import (
	"context"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("key not found in cache")

// Backend stores encoded cache entries.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type BigCacheBackend struct {
	cache *bigcache.BigCache
}

func NewBigCacheBackend(ctx context.Context, ttl time.Duration) (*BigCacheBackend, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = ttl
	cfg.Verbose = false
	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to initialise big cache")
	}
	return &BigCacheBackend{cache: c}, nil
}

func (b *BigCacheBackend) Get(_ context.Context, key string) ([]byte, error) {
	out, err := b.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (b *BigCacheBackend) Set(_ context.Context, key string, val []byte) error {
	return b.cache.Set(key, val)
}

func (b *BigCacheBackend) Delete(_ context.Context, key string) error {
	err := b.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (b *BigCacheBackend) Close() error {
	return b.cache.Close()
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisBackend shares the job cache between several front end processes.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisBackend connects to opts.Addr, which is either host:port or a
// redis:// URL. Password and DB from a URL win over opts.
func NewRedisBackend(opts RedisOptions) (*RedisBackend, error) {
	ro := &redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if strings.Contains(opts.Addr, "://") {
		parsed, err := redis.ParseURL(opts.Addr)
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse redis url")
		}
		if parsed.Password == "" {
			parsed.Password = opts.Password
		}
		ro = parsed
	}
	return &RedisBackend{client: redis.NewClient(ro), ttl: opts.TTL, prefix: "jobservice:"}, nil
}

// OpenBackend picks redis when an address is configured and the in-process
// cache otherwise. A redis that does not answer a ping is an error.
func OpenBackend(ctx context.Context, opts RedisOptions) (Backend, error) {
	if opts.Addr == "" {
		return NewBigCacheBackend(ctx, opts.TTL)
	}
	b, err := NewRedisBackend(opts)
	if err != nil {
		return nil, err
	}
	if err := b.Ping(ctx); err != nil {
		b.Close()
		return nil, errors.Wrap(err, "unable to reach redis")
	}
	return b, nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, val []byte) error {
	return b.client.Set(ctx, b.prefix+key, val, b.ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.prefix+key).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
