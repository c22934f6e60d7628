// Package events publishes attendance confirmations for downstream
// consumers such as calendar sync.
//
// Publishing happens after the save has committed. A failed publish is
// logged and counted; it never fails the save.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"presence/internal/attendance/models"
	id "presence/pkg/domain"
)

const TypeConfirmed = "attendance.confirmed"

// Confirmed is the event body.
type Confirmed struct {
	Type             string      `json:"type"`
	RecordID         id.RecordID `json:"serverId"`
	PersonIdentifier string      `json:"personIdentifier"`
	DisplayName      string      `json:"displayName,omitempty"`
	WeekStart        string      `json:"weekStart"`
	WeekEnd          string      `json:"weekEnd"`
	AttendanceDays   string      `json:"attendanceDays"`
	ConfirmedAt      time.Time   `json:"confirmedAt"`
	RequestID        string      `json:"requestId,omitempty"`
}

// Key partitions events so one person's weeks stay ordered.
func (e Confirmed) Key() string {
	return id.NormalizeInitials(e.PersonIdentifier) + "/" + e.WeekStart
}

// FromRecords builds one event per confirmed record.
func FromRecords(records []models.AttendanceRecord, requestID string) []Confirmed {
	out := make([]Confirmed, 0, len(records))
	for _, r := range records {
		e := Confirmed{
			Type:             TypeConfirmed,
			RecordID:         r.ID,
			PersonIdentifier: r.Initials.String(),
			DisplayName:      r.DisplayName,
			WeekStart:        r.WeekStart,
			WeekEnd:          r.WeekEnd,
			AttendanceDays:   r.AttendanceDays,
			RequestID:        requestID,
		}
		if r.ConfirmedAt != nil {
			e.ConfirmedAt = *r.ConfirmedAt
		}
		out = append(out, e)
	}
	return out
}

// Publisher delivers confirmation events.
type Publisher interface {
	Publish(ctx context.Context, events []Confirmed) error
	Close() error
}

// Log writes events to the logger. Used when no broker is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (p *Log) Publish(ctx context.Context, events []Confirmed) error {
	for _, e := range events {
		p.logger.InfoContext(ctx, "attendance confirmed",
			"request_id", e.RequestID,
			"person", e.PersonIdentifier,
			"week_start", e.WeekStart,
			"attendance_days", e.AttendanceDays,
		)
	}
	return nil
}

func (p *Log) Close() error { return nil }

// InMemory records events for tests.
type InMemory struct {
	mu     sync.Mutex
	events []Confirmed
	Err    error
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (p *InMemory) Publish(_ context.Context, events []Confirmed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *InMemory) Events() []Confirmed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Confirmed(nil), p.events...)
}

func (p *InMemory) Close() error { return nil }
