// Package jobs holds the scheduled background tasks of the order API.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	DefaultStatsSchedule = "@every 30s"
	statsRunTimeout      = 10 * time.Second
)

// GaugeRefresher recomputes the orders_by_status gauge.
type GaugeRefresher interface {
	RefreshStatusGauge(ctx context.Context) error
}

// OrderStatsJob periodically refreshes the per-status order gauge.
type OrderStatsJob struct {
	refresher GaugeRefresher
	schedule  string
	cron      *cron.Cron
	logger    zerolog.Logger

	// initial tracks the refresh started by Start outside the scheduler.
	initial sync.WaitGroup
}

func NewOrderStatsJob(refresher GaugeRefresher, schedule string, logger zerolog.Logger) *OrderStatsJob {
	if schedule == "" {
		schedule = DefaultStatsSchedule
	}
	return &OrderStatsJob{
		refresher: refresher,
		schedule:  schedule,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With().Str("component", "order_stats_job").Logger(),
	}
}

// Start registers the job, runs it once immediately and starts the scheduler.
func (j *OrderStatsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return fmt.Errorf("schedule order stats job %q: %w", j.schedule, err)
	}
	j.initial.Add(1)
	go func() {
		defer j.initial.Done()
		j.Run()
	}()
	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("order stats job started")
	return nil
}

// Run performs a single refresh.
func (j *OrderStatsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), statsRunTimeout)
	defer cancel()
	if err := j.refresher.RefreshStatusGauge(ctx); err != nil {
		j.logger.Error().Err(err).Msg("order stats refresh failed")
	}
}

// Stop stops the scheduler and waits for every running refresh to finish,
// including the one kicked off by Start.
func (j *OrderStatsJob) Stop() {
	<-j.cron.Stop().Done()
	j.initial.Wait()
	j.logger.Info().Msg("order stats job stopped")
}
