package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "users-api/internal/domain/user"
)

// keyPrefix namespaces user entries so Clear never touches other keys (e.g. rate limiter buckets).
const keyPrefix = "user:"

// scanBatch is the COUNT hint used while scanning for keys to clear.
const scanBatch = 100

// Version counters live outside keyPrefix so Clear's scan never removes them.
const (
	versionPrefix = "users:version:"
	generationKey = "users:generation"
)

// minVersionTTL bounds how long an entry's delete counter outlives its data.
const minVersionTTL = time.Hour

// setIfCurrent writes KEYS[1] only while the entry counter (KEYS[2]) and the
// generation counter (KEYS[3]) still hold the values read before the store.
var setIfCurrent = redis.NewScript(`
local entry = tonumber(redis.call('GET', KEYS[2]) or '0')
local gen = tonumber(redis.call('GET', KEYS[3]) or '0')
if entry ~= tonumber(ARGV[1]) or gen ~= tonumber(ARGV[2]) then
	return 0
end
if tonumber(ARGV[4]) > 0 then
	redis.call('SET', KEYS[1], ARGV[3], 'PX', ARGV[4])
else
	redis.call('SET', KEYS[1], ARGV[3])
end
return 1
`)

// Version identifies the invalidation state of one entry. Delete bumps Entry,
// Clear bumps Generation; a write-back carrying an older Version is dropped.
type Version struct {
	Entry      int64
	Generation int64
}

func (v Version) String() string {
	return strconv.FormatInt(v.Entry, 10) + ":" + strconv.FormatInt(v.Generation, 10)
}

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Version reads the invalidation counters for an entry.
	// Callers read it before loading from the store and pass it to Set.
	Version(ctx context.Context, id int64) (Version, error)

	// Set stores a user in cache with the configured TTL, unless the entry
	// was deleted or the cache cleared since v was read.
	Set(ctx context.Context, user *domain.User, v Version) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id int64) error

	// Clear removes every cached user.
	Clear(ctx context.Context) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

func versionKey(id int64) string {
	return fmt.Sprintf("%s%d", versionPrefix, id)
}

// versionTTL outlives any cached copy so a slow reader cannot see the counter reset.
func (c *RedisUserCache) versionTTL() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	return max(2*c.ttl, minVersionTTL)
}

func parseCounter(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}
	return strconv.ParseInt(s, 10, 64)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &user, nil
}

// Version reads the entry and generation counters in one MGET.
func (c *RedisUserCache) Version(ctx context.Context, id int64) (Version, error) {
	vals, err := c.client.MGet(ctx, versionKey(id), generationKey).Result()
	if err != nil {
		c.log.Error("failed to read cache version", zap.Int64("user_id", id), zap.Error(err))
		return Version{}, err
	}

	entry, err := parseCounter(vals[0])
	if err != nil {
		return Version{}, fmt.Errorf("entry version for user %d: %w", id, err)
	}
	gen, err := parseCounter(vals[1])
	if err != nil {
		return Version{}, fmt.Errorf("cache generation: %w", err)
	}

	return Version{Entry: entry, Generation: gen}, nil
}

// Set stores a user in Redis cache with TTL if v is still current.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User, v Version) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %d: %w", user.ID, err)
	}

	keys := []string{cacheKey(user.ID), versionKey(user.ID), generationKey}
	stored, err := setIfCurrent.Run(ctx, c.client, keys, v.Entry, v.Generation, data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	if stored == 0 {
		c.log.Debug("skipped stale cache write", zap.Int64("user_id", user.ID), zap.Stringer("version", v))
		return nil
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache and bumps its version so
// in-flight reads that started earlier cannot write it back.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		if ttl := c.versionTTL(); ttl > 0 {
			pipe.Expire(ctx, versionKey(id), ttl)
		}
		pipe.Del(ctx, cacheKey(id))
		return nil
	})
	if err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}

// Clear bumps the generation, then scans for every user key and deletes them in one DEL.
func (c *RedisUserCache) Clear(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Error("failed to bump cache generation", zap.Error(err))
		return err
	}

	var keys []string
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Error("failed to scan cache", zap.Error(err))
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to clear cache", zap.Int("count", len(keys)), zap.Error(err))
		return err
	}

	c.log.Debug("cleared cached users", zap.Int("count", len(keys)))
	return nil
}
