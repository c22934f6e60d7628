package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attendance module.
type Metrics struct {
	// Confirmed saves and the records they wrote
	SavesConfirmed   prometheus.Counter
	RecordsConfirmed prometheus.Counter

	// Rejected or failed saves by error code
	SaveFailures *prometheus.CounterVec

	// Snapshot source latencies: "roster", "leave", "records"
	SourceLatency *prometheus.HistogramVec

	// Confirmation events by outcome: "published", "failed"
	Events *prometheus.CounterVec
}

// New registers attendance metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		SavesConfirmed: f.NewCounter(prometheus.CounterOpts{
			Name: "presence_attendance_saves_confirmed_total",
			Help: "Attendance save batches committed",
		}),
		RecordsConfirmed: f.NewCounter(prometheus.CounterOpts{
			Name: "presence_attendance_records_confirmed_total",
			Help: "Attendance records written by committed saves",
		}),
		SaveFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_attendance_save_failures_total",
			Help: "Attendance save batches rejected or failed, by error code",
		}, []string{"code"}),
		SourceLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "presence_attendance_source_duration_seconds",
			Help:    "Duration of snapshot reads by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_attendance_events_total",
			Help: "Confirmation events by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncSaveConfirmed(records int) {
	if m != nil {
		m.SavesConfirmed.Inc()
		m.RecordsConfirmed.Add(float64(records))
	}
}

func (m *Metrics) IncSaveFailure(code string) {
	if m != nil {
		m.SaveFailures.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) ObserveSourceLatency(source string, d time.Duration) {
	if m != nil {
		m.SourceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

func (m *Metrics) IncEvents(outcome string, n int) {
	if m != nil {
		m.Events.WithLabelValues(outcome).Add(float64(n))
	}
}
