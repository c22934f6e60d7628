package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"presence/internal/calendar"
)

// Warmer reloads a leave window into the cache.
type Warmer interface {
	Warm(ctx context.Context, from, to string) error
}

// Refresher keeps the cached leave window for the tracked weeks warm on a
// cron schedule. Overlapping runs are skipped.
type Refresher struct {
	warmer  Warmer
	loc     *time.Location
	now     func() time.Time
	timeout time.Duration
	logger  *slog.Logger
	cron    *cron.Cron
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

func WithRunTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewRefresher(warmer Warmer, loc *time.Location, logger *slog.Logger, opts ...RefresherOption) *Refresher {
	if loc == nil {
		loc = time.UTC
	}
	r := &Refresher{
		warmer:  warmer,
		loc:     loc,
		now:     time.Now,
		timeout: time.Minute,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Window returns the inclusive date keys covering the current and next week.
func (r *Refresher) Window() (from, to string) {
	weeks := calendar.CurrentAndNext(r.now().In(r.loc))
	return weeks[0].StartKey(), weeks[len(weeks)-1].EndKey()
}

// RunOnce warms the current window.
func (r *Refresher) RunOnce(ctx context.Context) error {
	from, to := r.Window()
	start := time.Now()
	if err := r.warmer.Warm(ctx, from, to); err != nil {
		return fmt.Errorf("warm leave %s..%s: %w", from, to, err)
	}
	r.logger.InfoContext(ctx, "leave cache refreshed",
		"from", from,
		"to", to,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Start schedules RunOnce. It returns an error for an invalid spec.
func (r *Refresher) Start(schedule string) error {
	c := cron.New(
		cron.WithLocation(r.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.RunOnce(ctx); err != nil {
			r.logger.Error("leave cache refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", schedule, err)
	}
	r.cron = c
	c.Start()
	r.logger.Info("leave refresher started", "schedule", schedule)
	return nil
}

// Stop halts the schedule and returns a context done when the running job finishes.
func (r *Refresher) Stop() context.Context {
	if r.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return r.cron.Stop()
}
