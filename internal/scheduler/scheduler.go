// Package scheduler runs periodic sitemap generations on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/napieracademy/sitemap-manager/internal/generator"
	"github.com/napieracademy/sitemap-manager/internal/logger"
)

// Scheduler triggers generation runs on a fixed schedule. Overlap with a
// manually triggered run is handled by the generator's run lock, not here.
type Scheduler struct {
	cron   *cron.Cron
	gen    *generator.Generator
	logger logger.Logger
}

// New creates a scheduler firing the generator per the given cron spec.
func New(spec string, gen *generator.Generator, log logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		gen:    gen,
		logger: log,
	}

	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	return s, nil
}

// Start begins firing scheduled runs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop waits for an in-flight run to finish and stops the schedule.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runOnce() {
	summary, err := s.gen.Run(context.Background())
	if err != nil {
		s.logger.Error("Scheduled generation failed", logger.Error(err))
		return
	}

	s.logger.Info("Scheduled generation completed",
		logger.Int("urls", summary.URLCount),
	)
}
