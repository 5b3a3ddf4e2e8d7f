package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/news-crawler/internal/adapter/httpfetch"
	"github.com/user/news-crawler/internal/adapter/postgres"
	redisadapter "github.com/user/news-crawler/internal/adapter/redis"
	"github.com/user/news-crawler/internal/dedup"
	"github.com/user/news-crawler/internal/delivery/http/handler"
	"github.com/user/news-crawler/internal/delivery/http/router"
	"github.com/user/news-crawler/internal/entity"
	"github.com/user/news-crawler/internal/repository"
	"github.com/user/news-crawler/internal/robots"
	"github.com/user/news-crawler/internal/sanitizer"
	"github.com/user/news-crawler/internal/schedule"
	"github.com/user/news-crawler/internal/usecase"
	"github.com/user/news-crawler/pkg/config"
	"github.com/user/news-crawler/pkg/logger"
	"github.com/user/news-crawler/pkg/metrics"
)

const (
	modeOnce      = "once"
	modeScheduler = "scheduler"
)

type options struct {
	mode    string
	domain  string
	envFile string
	debug   bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "news-crawler",
		Short:         "Crawl configured news sites into the article store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.mode != modeOnce && opts.mode != modeScheduler {
				return fmt.Errorf("invalid --mode %q: want %s or %s", opts.mode, modeOnce, modeScheduler)
			}
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.mode, "mode", modeOnce, "run mode: once or scheduler")
	cmd.Flags().StringVar(&opts.domain, "domain", "", "crawl only this domain (host or name)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "optional env file with configuration")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	return cmd
}

// app holds the wired components shared by both run modes.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	domains  map[string]*entity.DomainConfig
	ingester usecase.Ingester
	status   usecase.StatusReporter
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	checks   map[string]handler.HealthCheck
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.Debug || opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, cleanup, err := wire(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.mode == modeScheduler {
		return a.runScheduler(ctx, opts.domain)
	}
	_, err = a.ingester.RunOnce(ctx, opts.domain)
	return err
}

func wire(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, func(), error) {
	domains, err := config.LoadDomains(cfg.DomainsDir, log)
	if err != nil {
		return nil, nil, err
	}
	if len(domains) == 0 {
		return nil, nil, fmt.Errorf("no valid domain configs in %s", cfg.DomainsDir)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// --- PostgreSQL ---
	pool, err := pgxpool.New(ctx, cfg.PostgresURL())
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create database pool: %w", err)
	}
	if cfg.DBAutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("Database schema ensured")
	}
	articles := postgres.NewArticleRepo(pool)
	failedURLs := postgres.NewFailedURLRepo(pool)
	checks := map[string]handler.HealthCheck{"postgres": pool.Ping}
	cleanup := pool.Close

	// --- Redis ---
	var store repository.KVStore
	if cfg.RedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		kv := redisadapter.NewKVStore(rdb)
		if err := kv.Ping(ctx); err != nil {
			log.Warn("Redis unreachable, dedup lookups will miss until it recovers", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
		} else {
			log.Info("Redis connection established", zap.String("addr", cfg.RedisAddr()))
		}
		store = kv
		checks["redis"] = kv.Ping
		cleanup = func() {
			_ = rdb.Close()
			pool.Close()
		}
	}
	cache := dedup.New(store, cfg.CacheTTL(), log)

	fetcher := httpfetch.NewFetcher(cfg.Timeout(), cfg.UserAgent)
	ingester := usecase.NewIngester(usecase.IngestDeps{
		Domains: domains,
		Settings: usecase.CrawlSettings{
			UserAgent:   cfg.UserAgent,
			MaxRetries:  cfg.MaxRetries,
			RetryDelay:  cfg.RetryDelay(),
			MaxArticles: cfg.MaxArticles,
		},
		Fetcher: fetcher,
		LoadRobots: func(ctx context.Context, domain string) usecase.RobotsPolicy {
			return robots.New(ctx, fetcher.Client(), domain, log)
		},
		Sanitizer:  sanitizer.New(log),
		Cache:      cache,
		Articles:   articles,
		FailedURLs: failedURLs,
		Metrics:    m,
		Logger:     log,
	})

	return &app{
		cfg:      cfg,
		logger:   log,
		domains:  domains,
		ingester: ingester,
		status:   usecase.NewStatusReporter(articles, cache, failedURLs, log),
		metrics:  m,
		registry: registry,
		checks:   checks,
	}, cleanup, nil
}

// runScheduler serves the operational HTTP API, runs an initial crawl and
// then crawls each domain on its schedule until ctx is cancelled.
func (a *app) runScheduler(ctx context.Context, filter string) error {
	sched := schedule.New(a.cfg.Location(), a.logger)
	for host, cfg := range a.domains {
		if !cfg.IsEnabled() || (filter != "" && !strings.EqualFold(filter, host) && !strings.EqualFold(filter, cfg.Name)) {
			continue
		}
		rule, err := schedule.ParseRule(cfg.Schedule.Cron)
		if err != nil {
			a.logger.Error("Invalid schedule, domain not scheduled", zap.String("domain", host), zap.Error(err))
			continue
		}
		domain := host
		if err := sched.Add(domain, rule, func(ctx context.Context) {
			if _, err := a.ingester.RunDomain(ctx, domain); err != nil {
				a.logger.Error("Scheduled crawl failed", zap.String("domain", domain), zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}
	if sched.Len() == 0 {
		return errors.New("no domains to schedule")
	}

	server := &http.Server{
		Addr:         ":" + a.cfg.ServerPort,
		Handler:      router.New(handler.NewHandler(a.status, a.checks, a.logger), a.metrics, a.registry, a.logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	serverErr, err := startServer(server, a.logger)
	if err != nil {
		return err
	}

	// A server that dies mid-run stops the crawl loop.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	served := make(chan error, 1)
	go func() {
		select {
		case err := <-serverErr:
			stop()
			served <- err
		case <-runCtx.Done():
			served <- <-serverErr
		}
	}()

	a.logger.Info("Running initial crawl for all domains")
	if _, err := a.ingester.RunOnce(runCtx, filter); err != nil && runCtx.Err() == nil {
		a.logger.Error("Initial crawl failed", zap.Error(err))
	}

	if runCtx.Err() == nil {
		sched.Run(runCtx)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown", zap.Error(err))
	}
	if err := <-served; err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// startServer binds the listen address before returning so a busy port fails
// startup. The returned channel yields a serve error, if any, and is closed
// once the server stops.
func startServer(server *http.Server, logger *zap.Logger) (<-chan error, error) {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("http server: listen %s: %w", server.Addr, err)
	}

	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		logger.Info("Starting server", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	return serverErr, nil
}
