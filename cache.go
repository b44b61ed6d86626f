package megasena

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// CacheBackend is the contract every cache backend fulfills. Values are
// opaque byte slices; callers serialize what they store.
type CacheBackend interface {
	// Get returns the value for key, or false when absent or expired
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the given TTL, overwriting any
	// previous entry and restarting its TTL clock
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool

	// Delete removes the entry for key
	Delete(ctx context.Context, key string) bool

	// Clear removes every entry
	Clear(ctx context.Context) bool

	// Exists reports whether key holds a live entry
	Exists(ctx context.Context, key string) bool
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is the in-process backend. Expiry is lazy: expired
// entries are evicted on read, there is no background sweep.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	logger  Logger
}

// NewMemoryCache creates an in-process cache
func NewMemoryCache(logger Logger) *MemoryCache {
	logger.Info("Memory cache initialized")
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		logger:  logger,
	}
}

// Get returns the value for key, evicting it first if it expired
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.logger.Debug("Cache miss: %s", key)
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.logger.Debug("Cache expired: %s", key)
		delete(c.entries, key)
		return nil, false
	}

	c.logger.Debug("Cache hit: %s", key)
	return entry.value, true
}

// Set stores value under key with the given TTL
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.logger.Debug("Cache set: %s (TTL: %s)", key, ttl)
	return true
}

// Delete removes the entry for key
func (c *MemoryCache) Delete(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.logger.Debug("Cache deleted: %s", key)
	return true
}

// Clear removes every entry
func (c *MemoryCache) Clear(_ context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]memoryEntry)
	c.logger.Info("Cache cleared")
	return true
}

// Exists reports whether key holds a live entry
func (c *MemoryCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.Get(ctx, key)
	return ok
}

// RedisCache is the shared external backend
type RedisCache struct {
	rdb    *redis.Client
	logger Logger
}

// NewRedisCache wraps an existing Redis client as a cache backend
func NewRedisCache(rdb *redis.Client, logger Logger) *RedisCache {
	return &RedisCache{rdb: rdb, logger: logger}
}

// Get returns the value for key; Redis handles expiry itself
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss: %s", key)
		return nil, false
	}
	if err != nil {
		c.logger.Error("Error getting from Redis: %v", err)
		return nil, false
	}

	c.logger.Debug("Cache hit: %s", key)
	return value, true
}

// Set stores value under key with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("Error setting Redis cache: %v", err)
		return false
	}
	c.logger.Debug("Cache set: %s (TTL: %s)", key, ttl)
	return true
}

// Delete removes the entry for key
func (c *RedisCache) Delete(ctx context.Context, key string) bool {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Error deleting from Redis: %v", err)
		return false
	}
	c.logger.Debug("Cache deleted: %s", key)
	return true
}

// Clear flushes the whole database
func (c *RedisCache) Clear(ctx context.Context) bool {
	if err := c.rdb.FlushDB(ctx).Err(); err != nil {
		c.logger.Error("Error clearing Redis cache: %v", err)
		return false
	}
	c.logger.Info("Redis cache cleared")
	return true
}

// Exists reports whether key holds a live entry
func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		c.logger.Error("Error checking Redis key existence: %v", err)
		return false
	}
	return n > 0
}

// CacheManager selects a backend at construction time and delegates to
// it. Requesting Redis when Redis is unreachable falls back to the
// in-process backend instead of failing; Kind reports what is in use.
type CacheManager struct {
	backend CacheBackend
	kind    string
	logger  Logger
}

// NewCacheManager builds the cache for the requested kind
func NewCacheManager(kind string, redisCfg *RedisConfig, logger Logger) *CacheManager {
	if kind == CacheKindRedis && redisCfg != nil {
		rdb, err := newRedisClient(redisCfg)
		if err != nil {
			logger.Error("Redis unavailable, falling back to memory cache: %v",
				ErrCache.WithCause(err))
		} else {
			logger.Info("Using Redis cache: %s", redisCfg.Addr)
			return &CacheManager{
				backend: NewRedisCache(rdb, logger),
				kind:    CacheKindRedis,
				logger:  logger,
			}
		}
	}

	return &CacheManager{
		backend: NewMemoryCache(logger),
		kind:    CacheKindMemory,
		logger:  logger,
	}
}

// newRedisClient connects and verifies the connection with a ping
func newRedisClient(cfg *RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Kind returns the effective backend kind
func (m *CacheManager) Kind() string { return m.kind }

// Get returns the value for key, or false when absent or expired
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, bool) {
	return m.backend.Get(ctx, key)
}

// Set stores value under key with the given TTL
func (m *CacheManager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return m.backend.Set(ctx, key, value, ttl)
}

// Delete removes the entry for key
func (m *CacheManager) Delete(ctx context.Context, key string) bool {
	return m.backend.Delete(ctx, key)
}

// Clear removes every entry
func (m *CacheManager) Clear(ctx context.Context) bool {
	return m.backend.Clear(ctx)
}

// Exists reports whether key holds a live entry
func (m *CacheManager) Exists(ctx context.Context, key string) bool {
	return m.backend.Exists(ctx, key)
}
