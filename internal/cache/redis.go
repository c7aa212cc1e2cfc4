package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/alxandria/ledger/pkg/config"
	"github.com/alxandria/ledger/pkg/logging"
)

const (
	namespace     = "alxandria"
	generationKey = "generation"
	defaultTTL    = 5 * time.Minute
)

var (
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = errors.New("cache is disabled")
	// ErrMiss is returned when a key is not cached
	ErrMiss = errors.New("cache miss")
)

// Cache wraps Redis client. A nil *Cache is a valid disabled cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return NewWithClient(client, cfg.TTL), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl, logger: logging.WithComponent("cache")}
}

// HashKey builds a fixed-length key from its parts
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) namespaceKey(key string) string {
	return namespace + ":" + key
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if !c.enabled() {
		return "", ErrCacheDisabled
	}
	val, err := c.client.Get(ctx, c.namespaceKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Set sets a value in cache with TTL. A zero ttl uses the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.enabled() {
		return ErrCacheDisabled
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.client.Set(ctx, c.namespaceKey(key), value, ttl).Err()
}

// Generation returns the current ledger generation. Query results are cached
// under the generation they were read at.
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	val, err := c.Get(ctx, generationKey)
	if errors.Is(err, ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// Bump advances the generation after a committed mutation
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, c.namespaceKey(generationKey)).Err()
}

// QueryKey is the cache key of a query message at a generation
func QueryKey(generation int64, msg []byte) string {
	return "query:" + strconv.FormatInt(generation, 10) + ":" + HashKey(string(msg))
}

// Remember returns the cached JSON for key, computing and storing it on a
// miss. Cache failures are logged and fall through to load.
func (c *Cache) Remember(ctx context.Context, msg []byte, load func() (json.RawMessage, error)) (json.RawMessage, error) {
	if !c.enabled() {
		return load()
	}

	gen, err := c.Generation(ctx)
	if err != nil {
		c.logger.Warn("Failed to read cache generation", zap.Error(err))
		return load()
	}
	key := QueryKey(gen, msg)

	if cached, err := c.Get(ctx, key); err == nil {
		return json.RawMessage(cached), nil
	} else if !errors.Is(err, ErrMiss) {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, []byte(out), 0); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if !c.enabled() {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}
