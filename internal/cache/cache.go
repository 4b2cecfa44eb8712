package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// RecentTTL matches the bank's once per 30s token limit.
	RecentTTL    = 30 * time.Second
	StatementTTL = 24 * time.Hour
)

type Config struct {
	Host string
	Pass string
	Port int
}

// Redis holds the response caches. Recent keeps balances and period
// lookups, Statements keeps closed statements, which never change.
type Redis struct {
	Client     *redis.Ring
	Recent     *cache.Cache
	Statements *cache.Cache
}

func NewConnection(cfg Config) (*Redis, error) {
	log.Info("connecting to redis")

	r := redis.NewRing(&redis.RingOptions{
		Addrs: map[string]string{
			"server1": fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		},
		HeartbeatFrequency: 10 * time.Second,
		Password:           cfg.Pass,
		MaxRetries:         3,
		MaxRetryBackoff:    3 * time.Second,
		ReadTimeout:        1 * time.Second,
		WriteTimeout:       1 * time.Second,
		PoolSize:           10,
		MinIdleConns:       1,
	})

	log.Info("verifying redis connection")

	if err := r.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	log.Info("verified redis connection")

	return &Redis{
		Client: r,
		Recent: cache.New(&cache.Options{
			Redis:      r,
			LocalCache: cache.NewTinyLFU(1000, RecentTTL),
		}),
		Statements: cache.New(&cache.Options{
			Redis:      r,
			LocalCache: cache.NewTinyLFU(1000, StatementTTL),
		}),
	}, nil
}

// Load returns the cached bytes under key. A nil cache never hits.
func Load(ctx context.Context, c *cache.Cache, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	var b []byte
	if err := c.Get(ctx, key, &b); err != nil {
		if err != cache.ErrCacheMiss {
			log.WithError(err).WithField("key", key).Warn("failed to read cache")
		}
		return nil, false
	}

	return b, true
}

func Store(ctx context.Context, c *cache.Cache, key string, b []byte, ttl time.Duration) {
	if c == nil {
		return
	}

	err := c.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: b,
		TTL:   ttl,
	})
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to write cache")
	}
}

func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
