package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DjSurgeon/mern-thinkboard/internal/config"
	"github.com/DjSurgeon/mern-thinkboard/internal/notes"
	"github.com/DjSurgeon/mern-thinkboard/internal/observability"
	"github.com/DjSurgeon/mern-thinkboard/internal/server"
	"github.com/DjSurgeon/mern-thinkboard/internal/server/handlers"
	"github.com/DjSurgeon/mern-thinkboard/internal/store"
	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit"
	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/application"
	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/infra"
)

const metricsNamespace = "thinkboard"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the notes API",
	Long: `Start the HTTP server. SIGINT/SIGTERM trigger a graceful shutdown.

REDIS_URL (and REDIS_TOKEN unless the URL carries a password) are required:
the process refuses to start without them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := loadViper()
		if err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		log, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return serve(ctx, cfg, log)
	},
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	rdb, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	repo, storeCheck, closeRepo, err := openRepository(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	ready := map[string]handlers.HealthChecker{
		"redis": handlers.CheckFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	}
	if storeCheck != nil {
		ready["store"] = storeCheck
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stats, statsView, err := newStats(reg, rdb, cfg)
	if err != nil {
		return err
	}

	local, err := newLocalDecider(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}

	opts := server.Options{
		Config: cfg.Server,
		Logger: log,
		Notes:  notes.NewService(repo),
		Ready:  ready,
		Stats:  statsView,
		Distributed: ratelimit.Options{
			Name: "redis",
			Decider: application.FixedWindowService{
				Counter: infra.NewRedisCounter(rdb, infra.WithCounterPrefix(cfg.RateLimit.Prefix)),
				Max:     cfg.RateLimit.DistributedMax,
				Window:  cfg.RateLimit.DistributedWindow,
			},
			Stats:              stats,
			TrustXForwardedFor: cfg.RateLimit.TrustXFF,
			Window:             cfg.RateLimit.DistributedWindow,
			FailOpen:           cfg.RateLimit.FailOpen,
		},
		Local: ratelimit.Options{
			Name:               "local",
			Decider:            local,
			Stats:              stats,
			TrustXForwardedFor: cfg.RateLimit.TrustXFF,
			Window:             cfg.RateLimit.LocalWindow,
			StandardHeaders:    true,
			FailOpen:           cfg.RateLimit.FailOpen,
		},
		Concurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.RateLimit.MaxConcurrent,
			AcquireTimeout: cfg.RateLimit.ConcurrencyTimeout,
		},
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	srv := server.New(opts)

	log.Info("rate limits",
		zap.Int("distributed_max", cfg.RateLimit.DistributedMax),
		zap.Duration("distributed_window", cfg.RateLimit.DistributedWindow),
		zap.Int("local_max", cfg.RateLimit.LocalMax),
		zap.Duration("local_window", cfg.RateLimit.LocalWindow),
		zap.String("local_algorithm", cfg.RateLimit.LocalAlgorithm),
		zap.Bool("fail_open", cfg.RateLimit.FailOpen),
		zap.Bool("trust_xff", cfg.RateLimit.TrustXFF),
		zap.Int("max_concurrent", cfg.RateLimit.MaxConcurrent),
		zap.Bool("stats_enabled", cfg.RateLimit.StatsEnabled),
		zap.String("stats_backend", cfg.RateLimit.StatsBackend))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

// newRedisClient monta o cliente a partir de REDIS_URL/REDIS_TOKEN e testa a
// conexão. Falha aqui derruba a subida.
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if cfg.Token != "" {
		opt.Password = cfg.Token
	}
	if cfg.Timeout > 0 {
		opt.DialTimeout = cfg.Timeout
		opt.ReadTimeout = cfg.Timeout
		opt.WriteTimeout = cfg.Timeout
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// openRepository devolve o repositório e, para libsql, o check de readiness do banco.
func openRepository(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (notes.Repository, handlers.HealthChecker, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using in-memory note repository; notes are lost on restart")
		return notes.NewMemoryRepository(), nil, func() {}, nil
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, nil, nil, err
	}
	return store.NewNoteRepository(st), handlers.CheckFunc(st.Ping), func() { _ = st.Close() }, nil
}

// newLocalDecider cria o limiter do processo inteiro (cota compartilhada).
// O janitor para quando ctx encerra.
func newLocalDecider(ctx context.Context, cfg config.RateLimitConfig) (domain.Decider, error) {
	switch cfg.LocalAlgorithm {
	case config.AlgorithmFixedWindow:
		counter := infra.NewMemoryCounter()
		counter.StartJanitor(ctx)
		return application.FixedWindowService{
			Counter: counter,
			Max:     cfg.LocalMax,
			Window:  cfg.LocalWindow,
			Shared:  true,
		}, nil
	case config.AlgorithmTokenBucket:
		buckets := infra.NewTokenBucketStoreForWindow(cfg.LocalMax, cfg.LocalWindow)
		buckets.StartJanitor(ctx)
		return application.TokenBucketService{
			Store:  buckets,
			Burst:  buckets.Burst(),
			Shared: true,
			// tempo para recarregar uma ficha
			RetryAfter: time.Duration(float64(time.Second) / buckets.RPS()),
		}, nil
	}
	return nil, fmt.Errorf("unknown local rate limit algorithm %q", cfg.LocalAlgorithm)
}

// newStats monta o fan-out de estatísticas. O segundo retorno só existe com
// RATE_STATS_BACKEND=memory e alimenta GET /stats.
func newStats(reg prometheus.Registerer, rdb redis.Cmdable, cfg config.Config) (domain.StatsStore, handlers.StatsSource, error) {
	var (
		stats infra.MultiStats
		view  handlers.StatsSource
	)
	if cfg.Metrics.Enabled {
		prom, err := infra.NewPrometheusStats(reg, metricsNamespace)
		if err != nil {
			return nil, nil, fmt.Errorf("register rate limit metrics: %w", err)
		}
		stats = append(stats, prom)
	}
	if cfg.RateLimit.StatsEnabled {
		switch cfg.RateLimit.StatsBackend {
		case config.StatsBackendMemory:
			mem := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.RateLimit.StatsTrackKeys))
			stats = append(stats, mem)
			view = mem
		default:
			stats = append(stats, infra.NewRedisStatsStore(rdb,
				infra.WithStatsPrefix(cfg.RateLimit.StatsPrefix),
				infra.WithStatsTTL(cfg.RateLimit.StatsTTL),
				infra.WithStatsTrackKeys(cfg.RateLimit.StatsTrackKeys),
			))
		}
	}
	if len(stats) == 0 {
		return nil, nil, nil
	}
	return stats, view, nil
}
