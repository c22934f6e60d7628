// Package service is the system of record for attendance. It validates and
// confirms save batches, serves snapshots and resolves boards.
package service

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"presence/internal/attendance/events"
	"presence/internal/attendance/metrics"
	"presence/internal/attendance/store"
	"presence/internal/calendar"
	"presence/internal/leave"
	"presence/internal/roster"
)

const defaultSnapshotTimeout = 5 * time.Second

// Service coordinates the attendance store with its roster and leave
// collaborators.
type Service struct {
	store           store.Store
	tx              StoreTx
	roster          roster.Source
	leave           leave.Source
	publisher       events.Publisher
	metrics         *metrics.Metrics
	logger          *slog.Logger
	tracer          trace.Tracer
	loc             *time.Location
	cutoff          time.Duration
	snapshotTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTx sets the transactional boundary. Defaults to a sharded lock over
// the store.
func WithTx(tx StoreTx) Option {
	return func(s *Service) { s.tx = tx }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLocation sets the office timezone used for week and day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithCutoff sets the time of day after which Today reports the next day.
func WithCutoff(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cutoff = d
		}
	}
}

func WithSnapshotTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.snapshotTimeout = d
		}
	}
}

func New(st store.Store, rosterSource roster.Source, leaveSource leave.Source, opts ...Option) *Service {
	s := &Service{
		store:           st,
		roster:          rosterSource,
		leave:           leaveSource,
		logger:          slog.Default(),
		loc:             time.UTC,
		cutoff:          calendar.DefaultCutoff,
		snapshotTimeout: defaultSnapshotTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedTx(st)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("presence/attendance")
	}
	return s
}

// Location returns the office timezone.
func (s *Service) Location() *time.Location {
	return s.loc
}
