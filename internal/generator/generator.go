// Package generator runs the sitemap generation pipeline: count the tracked
// records, fetch them in batches, partition and build the XML document,
// publish it, and record the run statistics. It is also the entry point for
// the operator-facing discrepancy report.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/napieracademy/sitemap-manager/internal/artifact"
	"github.com/napieracademy/sitemap-manager/internal/events"
	"github.com/napieracademy/sitemap-manager/internal/fetch"
	"github.com/napieracademy/sitemap-manager/internal/lock"
	"github.com/napieracademy/sitemap-manager/internal/logger"
	"github.com/napieracademy/sitemap-manager/internal/metrics"
	"github.com/napieracademy/sitemap-manager/internal/models"
	"github.com/napieracademy/sitemap-manager/internal/repository"
	"github.com/napieracademy/sitemap-manager/internal/sitemap"
)

// ErrRunInProgress is returned when another generation run holds the lock.
var ErrRunInProgress = lock.ErrAlreadyRunning

// Summary is the JSON result of one generation run.
type Summary struct {
	Success     bool      `json:"success"`
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"runId"`
	RecordCount int       `json:"recordCount"`
	URLCount    int       `json:"urlCount"`
	FilmCount   int       `json:"filmCount"`
	SerieCount  int       `json:"serieCount"`
	PersonCount int       `json:"personCount"`
	PublicURL   string    `json:"publicUrl,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Generator wires the pipeline stages together.
type Generator struct {
	pages     *repository.PageRepository
	stats     *repository.StatsRepository
	store     *artifact.Store
	runLock   *lock.RunLock
	events    *events.Publisher
	metrics   *metrics.Recorder
	fetcher   *fetch.Client
	baseURL   string
	publicURL string
	logger    logger.Logger

	now func() time.Time
}

// Config carries the generator dependencies. Lock, Events, Metrics, and
// Fetcher may be nil; the corresponding concern is then skipped.
type Config struct {
	Pages     *repository.PageRepository
	Stats     *repository.StatsRepository
	Store     *artifact.Store
	RunLock   *lock.RunLock
	Events    *events.Publisher
	Metrics   *metrics.Recorder
	Fetcher   *fetch.Client
	BaseURL   string
	PublicURL string
	Logger    logger.Logger
}

func New(cfg Config) *Generator {
	return &Generator{
		pages:     cfg.Pages,
		stats:     cfg.Stats,
		store:     cfg.Store,
		runLock:   cfg.RunLock,
		events:    cfg.Events,
		metrics:   cfg.Metrics,
		fetcher:   cfg.Fetcher,
		baseURL:   cfg.BaseURL,
		publicURL: cfg.PublicURL,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// Run executes one generation run. Only two conditions are fatal: the total
// record count cannot be obtained, and the final artifact write fails.
// Every other failure is absorbed into a degraded-but-successful run.
// The returned error is non-nil only for the fatal cases and for
// ErrRunInProgress.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	start := g.now()
	runID := uuid.New().String()
	log := g.logger.With(logger.String("run_id", runID))

	if g.runLock != nil {
		if err := g.runLock.Acquire(ctx, runID); err != nil {
			log.Warn("Generation run skipped, lock held")
			g.metrics.ObserveRun(metrics.StatusSkipped, g.now().Sub(start))
			return &Summary{
				Success:   false,
				Timestamp: start,
				RunID:     runID,
				Error:     err.Error(),
			}, err
		}
		defer func() {
			if err := g.runLock.Release(ctx, runID); err != nil {
				log.Warn("Could not release run lock", logger.Error(err))
			}
		}()
	}

	log.Info("Generation run started")

	total, err := g.pages.CountAll(ctx)
	if err != nil {
		return g.fail(ctx, log, start, runID, fmt.Errorf("count tracked pages: %w", err))
	}

	records, err := g.pages.FetchAll(ctx, total)
	if err != nil {
		// FetchAll degrades internally; an error here still leaves a usable
		// partial set, so log and continue with what came back.
		log.Warn("Record fetch degraded", logger.Error(err))
	}
	if len(records) < total {
		log.Warn("Fetched fewer records than counted",
			logger.Int("counted", total),
			logger.Int("fetched", len(records)),
		)
	}

	part := sitemap.NewPartition(records)
	if part.Untyped > 0 {
		log.Warn("Records without page_type excluded from sitemap",
			logger.Int("untyped", part.Untyped),
		)
	}

	doc := sitemap.Build(g.baseURL, models.StaticRoutes(), part, start)
	if err := g.store.Publish(doc, start); err != nil {
		return g.fail(ctx, log, start, runID, fmt.Errorf("publish sitemap: %w", err))
	}

	urlCount := len(models.StaticRoutes()) + part.URLCount()
	stats := &models.SitemapStats{
		ID:             models.StatsRowID,
		LastGeneration: start,
		URLsCount:      urlCount,
		FilmCount:      len(part.Film.ValidSlugs),
		SerieCount:     len(part.Serie.ValidSlugs),
		PersonCount:    part.PersonCount(),
		SubtypeCounts:  part.SubtypeCounts(),
	}
	if err := g.stats.WriteSuccess(ctx, stats); err != nil {
		// The sitemap is already published; a stats miss is operational
		// noise, not a failed run.
		log.Error("Could not record run statistics", logger.Error(err))
	}

	g.publishEvent(ctx, log, events.GenerationEvent{
		EventType: events.EventGenerationCompleted,
		RunID:     runID,
		Timestamp: start,
		URLCount:  urlCount,
	})

	elapsed := g.now().Sub(start)
	g.metrics.ObserveRun(metrics.StatusSuccess, elapsed)
	g.metrics.SetURLCount(urlCount)

	log.Info("Generation run completed",
		logger.Int("records", len(records)),
		logger.Int("urls", urlCount),
		logger.Duration("elapsed", elapsed),
	)

	return &Summary{
		Success:     true,
		Timestamp:   start,
		RunID:       runID,
		RecordCount: len(records),
		URLCount:    urlCount,
		FilmCount:   stats.FilmCount,
		SerieCount:  stats.SerieCount,
		PersonCount: stats.PersonCount,
		PublicURL:   g.publicURL,
	}, nil
}

// fail records a fatal run outcome. Recording the failure is itself
// best-effort: a failure to record the failure is only logged.
func (g *Generator) fail(ctx context.Context, log logger.Logger, start time.Time, runID string, runErr error) (*Summary, error) {
	log.Error("Generation run failed", logger.Error(runErr))

	if err := g.stats.WriteFailure(ctx, start, runErr.Error()); err != nil {
		log.Error("Could not record run failure", logger.Error(err))
	}

	g.publishEvent(ctx, log, events.GenerationEvent{
		EventType: events.EventGenerationFailed,
		RunID:     runID,
		Timestamp: start,
		Error:     runErr.Error(),
	})

	g.metrics.ObserveRun(metrics.StatusFailure, g.now().Sub(start))

	return &Summary{
		Success:   false,
		Timestamp: start,
		RunID:     runID,
		Error:     runErr.Error(),
	}, runErr
}

func (g *Generator) publishEvent(ctx context.Context, log logger.Logger, event events.GenerationEvent) {
	if err := g.events.Publish(ctx, event); err != nil {
		log.Warn("Could not publish generation event", logger.Error(err))
	}
}

// Discrepancies fetches the currently published sitemap and reconciles the
// tracked-page set against it. This is a read-only diagnostic pass: it never
// regenerates or mutates anything.
func (g *Generator) Discrepancies(ctx context.Context) (*sitemap.Report, error) {
	if g.fetcher == nil {
		return nil, errors.New("published sitemap fetcher not configured")
	}

	body, err := g.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	published, err := sitemap.Parse(body, g.baseURL)
	if err != nil {
		return nil, err
	}

	total, err := g.pages.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tracked pages: %w", err)
	}

	records, err := g.pages.FetchAll(ctx, total)
	if err != nil {
		return nil, fmt.Errorf("fetch tracked pages: %w", err)
	}

	return sitemap.Reconcile(records, published), nil
}
