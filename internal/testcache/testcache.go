package testcache

import (
	"github.com/go-redis/cache/v8"
	c "github.com/tamasbrandstadter/fio-api/internal/cache"
)

// Local returns caches with only the in-process tier, no Redis behind them.
func Local() *c.Redis {
	return &c.Redis{
		Recent: cache.New(&cache.Options{
			LocalCache: cache.NewTinyLFU(1000, c.RecentTTL),
		}),
		Statements: cache.New(&cache.Options{
			LocalCache: cache.NewTinyLFU(1000, c.StatementTTL),
		}),
	}
}
