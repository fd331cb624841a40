// internal/catalog/refresher.go
package catalog

import (
	"context"
	"fmt"
	"time"

	"yojanamitra/internal/common/logger"

	"github.com/robfig/cron/v3"
)

// Warmer reloads a cached catalog from its source.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// Refresher re-warms the catalog cache on a cron schedule.
type Refresher struct {
	warmer   Warmer
	schedule cron.Schedule
	expr     string
	timeout  time.Duration
	logger   logger.Logger
	now      func() time.Time
}

// NewRefresher parses a standard five-field cron expression.
func NewRefresher(w Warmer, schedule string, log logger.Logger) (*Refresher, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return &Refresher{
		warmer:   w,
		schedule: sched,
		expr:     schedule,
		timeout:  30 * time.Second,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog-refresher"}),
		now:      time.Now,
	}, nil
}

// Next returns the first refresh time after t.
func (r *Refresher) Next(t time.Time) time.Time {
	return r.schedule.Next(t)
}

// RefreshOnce warms the cache and logs the outcome.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.warmer.Warm(ctx)
	if err != nil {
		r.logger.Error("catalog refresh failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	r.logger.Info("catalog refreshed", map[string]interface{}{"schemes": n})
	return nil
}

// Run blocks until ctx is cancelled, refreshing at each scheduled time.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("catalog refresh scheduled", map[string]interface{}{"schedule": r.expr})

	for {
		now := r.now()
		next := r.schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			_ = r.RefreshOnce(ctx)
		}
	}
}
