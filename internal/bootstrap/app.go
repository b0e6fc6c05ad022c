// Package bootstrap handles application initialization and lifecycle
// management for the sitemap-manager service.
package bootstrap

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/napieracademy/sitemap-manager/internal/api"
	"github.com/napieracademy/sitemap-manager/internal/artifact"
	"github.com/napieracademy/sitemap-manager/internal/events"
	"github.com/napieracademy/sitemap-manager/internal/fetch"
	"github.com/napieracademy/sitemap-manager/internal/generator"
	"github.com/napieracademy/sitemap-manager/internal/handlers"
	"github.com/napieracademy/sitemap-manager/internal/lock"
	"github.com/napieracademy/sitemap-manager/internal/logger"
	"github.com/napieracademy/sitemap-manager/internal/metrics"
	"github.com/napieracademy/sitemap-manager/internal/repository"
	"github.com/napieracademy/sitemap-manager/internal/scheduler"
)

const version = "dev"

// Start initializes and starts the sitemap-manager application.
func Start() error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Setup database
	db, err := SetupDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()

	// Phase 3: Setup Redis (optional)
	redisClient := SetupRedis(cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Phase 4: Wire the generation pipeline
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pagesRepo := repository.NewPageRepository(db.DB(), log)
	statsRepo := repository.NewStatsRepository(db.DB(), log)
	store := artifact.NewStore(osfs.New(cfg.Sitemap.PublicDir), cfg.Sitemap.FileName, log)

	gen := generator.New(generator.Config{
		Pages:     pagesRepo,
		Stats:     statsRepo,
		Store:     store,
		RunLock:   lock.NewRunLock(redisClient, cfg.Sitemap.LockTTL, log),
		Events:    events.NewPublisher(redisClient, log),
		Metrics:   metrics.NewRecorder(registry),
		Fetcher:   fetch.NewClient(cfg.Sitemap.PublishedURL, cfg.Sitemap.FetchTimeout),
		BaseURL:   cfg.Sitemap.BaseURL,
		PublicURL: cfg.Sitemap.PublishedURL,
		Logger:    log,
	})

	// Phase 5: Optional scheduler
	if cfg.Scheduler.Enabled {
		sched, schedErr := scheduler.New(cfg.Scheduler.Spec, gen, log)
		if schedErr != nil {
			return fmt.Errorf("failed to create scheduler: %w", schedErr)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Phase 6: Setup and run HTTP server
	handler := handlers.NewSitemapHandler(gen, statsRepo, store, log)
	router := api.NewRouter(handler, cfg, db, registry, log)

	log.Info("Starting HTTP server",
		logger.String("host", cfg.Server.Host),
		logger.Int("port", cfg.Server.Port),
	)

	if runErr := RunServer(cfg, router, log); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
