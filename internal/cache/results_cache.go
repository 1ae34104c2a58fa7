package cache

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/tcp_snm/deepshift/internal/metrics"
)

// LoadFunc produces the encoded value on a cache miss.
type LoadFunc func(ctx context.Context) ([]byte, error)

// ResultsCache holds the encoded public leaderboard of a contest.
type ResultsCache interface {
	GetOrLoad(ctx context.Context, contestID uuid.UUID, load LoadFunc) ([]byte, error)
	Invalidate(ctx context.Context, contestID uuid.UUID) error
}

// RedisResultsCache stores one string key per contest. Concurrent misses for
// the same contest share one load.
type RedisResultsCache struct {
	client  *redis.Client
	ttl     time.Duration
	sf      singleflight.Group
	mu      sync.Mutex
	rnd     *rand.Rand
	metrics *metrics.Metrics
	logger  *log.Entry
}

func NewRedisResultsCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *RedisResultsCache {
	return &RedisResultsCache{
		client:  client,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		metrics: m,
		logger:  log.WithField("from", "results cache"),
	}
}

func (c *RedisResultsCache) genKey(contestID uuid.UUID) string {
	return "contest:" + contestID.String() + ":results:gen"
}

// key names one generation of a contest's leaderboard. Invalidate bumps the
// generation, so a load that began before it can only fill a key nobody
// reads anymore.
func (c *RedisResultsCache) key(contestID uuid.UUID, gen int64) string {
	return "contest:" + contestID.String() + ":results:" + strconv.FormatInt(gen, 10)
}

func (c *RedisResultsCache) generation(ctx context.Context, contestID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(contestID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisResultsCache) GetOrLoad(ctx context.Context, contestID uuid.UUID, load LoadFunc) ([]byte, error) {
	gen, err := c.generation(ctx, contestID)
	if err != nil {
		// redis trouble should never fail the read
		c.logger.Warnf("generation of contest %s: %v", contestID, err)
		c.metrics.IncCacheLookup("miss")
		return load(ctx)
	}
	key := c.key(contestID, gen)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.metrics.IncCacheLookup("hit")
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warnf("get %s: %v", key, err)
	}
	c.metrics.IncCacheLookup("miss")

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// another caller may have filled it
		if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
			return data, nil
		}

		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, data, c.ttlWithJitter()).Err(); err != nil {
			c.logger.Warnf("set %s: %v", key, err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *RedisResultsCache) Invalidate(ctx context.Context, contestID uuid.UUID) error {
	gen, err := c.client.Incr(ctx, c.genKey(contestID)).Result()
	if err != nil {
		c.logger.Errorf("invalidate contest %s: %v", contestID, err)
		return err
	}
	if err := c.client.Del(ctx, c.key(contestID, gen-1)).Err(); err != nil {
		c.logger.Warnf("drop stale results of contest %s: %v", contestID, err)
	}
	return nil
}

func (c *RedisResultsCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// NoopResultsCache always loads. Used when redis is not configured.
type NoopResultsCache struct{}

func (NoopResultsCache) GetOrLoad(ctx context.Context, _ uuid.UUID, load LoadFunc) ([]byte, error) {
	return load(ctx)
}

func (NoopResultsCache) Invalidate(context.Context, uuid.UUID) error { return nil }
