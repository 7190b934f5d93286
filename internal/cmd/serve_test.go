package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DjSurgeon/mern-thinkboard/internal/config"
	"github.com/DjSurgeon/mern-thinkboard/internal/notes"
	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

func localConfig(algo string, max int) config.RateLimitConfig {
	return config.RateLimitConfig{LocalAlgorithm: algo, LocalMax: max, LocalWindow: time.Hour}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	rdb, err := newRedisClient(context.Background(), config.RedisConfig{
		URL:     "redis://" + mr.Addr(),
		Token:   "secret",
		Timeout: time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	_, err = newRedisClient(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr(), Token: "wrong"})
	require.Error(t, err)
}

func TestNewStats(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	t.Run("Disabled", func(t *testing.T) {
		stats, view, err := newStats(prometheus.NewRegistry(), rdb, config.Config{})
		require.NoError(t, err)
		require.Nil(t, stats)
		require.Nil(t, view)
	})

	t.Run("PrometheusAndRedis", func(t *testing.T) {
		cfg := config.Config{}
		cfg.Metrics.Enabled = true
		cfg.RateLimit.StatsEnabled = true
		cfg.RateLimit.StatsBackend = config.StatsBackendRedis
		cfg.RateLimit.StatsPrefix = "tb:stats"
		cfg.RateLimit.StatsTTL = time.Hour

		reg := prometheus.NewRegistry()
		stats, view, err := newStats(reg, rdb, cfg)
		require.NoError(t, err)
		require.Nil(t, view)

		require.NoError(t, stats.Record(context.Background(), domain.StatsEvent{
			Limiter: "redis", Key: "1.2.3.4", Allowed: false, Method: "GET", Path: "/api/notes", At: time.Now(),
		}))
		require.Equal(t, "1", mr.HGet("tb:stats:total", "denied"))

		families, err := reg.Gather()
		require.NoError(t, err)
		require.Len(t, families, 1)
		require.Equal(t, "thinkboard_ratelimit_decisions_total", families[0].GetName())
	})
}

func TestNewStats_MemoryBackend(t *testing.T) {
	cfg := config.Config{}
	cfg.RateLimit.StatsEnabled = true
	cfg.RateLimit.StatsBackend = config.StatsBackendMemory

	stats, view, err := newStats(prometheus.NewRegistry(), nil, cfg)
	require.NoError(t, err)
	require.NotNil(t, view)

	require.NoError(t, stats.Record(context.Background(), domain.StatsEvent{Limiter: "local", Allowed: true}))
	require.EqualValues(t, 1, view.Snapshot().ByLimiter["local"].Allowed)
}

func TestOpenRepository_Memory(t *testing.T) {
	repo, check, closeRepo, err := openRepository(context.Background(), config.StoreConfig{Driver: config.DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(closeRepo)
	require.IsType(t, &notes.MemoryRepository{}, repo)
	require.Nil(t, check)
}
