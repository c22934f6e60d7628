// Package workspace is the editing session of one signed-in person: a
// snapshot from the server, a draft seeded from it, and at most one save in
// flight. It is safe for use from multiple goroutines.
package workspace

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"presence/internal/attendance"
	"presence/internal/attendance/models"
	"presence/internal/calendar"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

var (
	ErrSaveInProgress = dErrors.New(dErrors.CodeConflict, "a save is already in progress")
	ErrClosed         = dErrors.New(dErrors.CodeConflict, "workspace is closed")
)

// Backend is the attendance API as the workspace uses it.
type Backend interface {
	Snapshot(ctx context.Context, weekStarts []string) (models.Snapshot, error)
	Submit(ctx context.Context, payloads []models.SavePayload) ([]models.AttendanceRecord, error)
}

// Workspace holds the draft of one person against a snapshot.
type Workspace struct {
	mu       sync.Mutex
	backend  Backend
	person   id.Initials
	weeks    []string
	snapshot models.Snapshot
	draft    *attendance.Draft
	version  int64
	saving   bool
	closed   bool
	logger   *slog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithWeeks tracks specific weeks instead of the server's current and next.
func WithWeeks(weekStarts ...string) Option {
	return func(w *Workspace) { w.weeks = weekStarts }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) { w.logger = logger }
}

// Open loads a snapshot and seeds the draft for person.
func Open(ctx context.Context, backend Backend, person id.Initials, opts ...Option) (*Workspace, error) {
	if person.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no signed-in person")
	}
	w := &Workspace{
		backend: backend,
		person:  person,
		draft:   attendance.NewDraft(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	snap, err := backend.Snapshot(ctx, w.weeks)
	if err != nil {
		return nil, err
	}
	w.apply(snap)
	return w, nil
}

// apply installs snap and reseeds the draft. Callers hold mu.
func (w *Workspace) apply(snap models.Snapshot) {
	w.snapshot = snap
	w.weeks = slices.Clone(snap.Weeks)
	w.draft.Seed(snap.Records, snap.Roster, w.weeks)
	w.version++
}

func (w *Workspace) Person() id.Initials {
	return w.person
}

// Weeks returns the tracked week start keys.
func (w *Workspace) Weeks() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.weeks)
}

// Version increments every time the workspace takes in server state. It is
// local to this workspace; Snapshot().Version is the server's value as last
// fetched.
func (w *Workspace) Version() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

// Snapshot returns the server state the draft is based on.
func (w *Workspace) Snapshot() models.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

func (w *Workspace) IsSaving() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saving
}

// Days returns the drafted day labels of person for week.
func (w *Workspace) Days(person id.Initials, week string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, _ := w.draft.Cell(week, person)
	return s.Labels()
}

// Status resolves person's status for day of week from the draft and the
// snapshot's leave.
func (w *Workspace) Status(person id.Initials, day, week string) attendance.Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	date := ""
	if monday, err := calendar.ParseDate(week, nil); err == nil {
		if label, ok := attendance.CanonicalDay(day); ok {
			day = label
			if d, ok := calendar.DateOf(monday, label); ok {
				date = calendar.FormatDate(d)
			}
		}
	}
	return attendance.ResolveStatus(w.draft.Raw(week, person), person, day, date, w.snapshot.Leave)
}

// ToggleDay flips day in the signed-in person's draft for week.
func (w *Workspace) ToggleDay(week, day string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.saving {
		return ErrSaveInProgress
	}
	if !slices.Contains(w.weeks, week) {
		return dErrors.New(dErrors.CodeValidation, "week "+week+" is not tracked")
	}
	return w.draft.ToggleDay(week, w.person, day)
}

// HasUnsavedChanges reports whether any tracked week of the signed-in
// person needs saving.
func (w *Workspace) HasUnsavedChanges() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return attendance.HasUnsavedChanges(w.draft, w.snapshot.Records, w.person, w.weeks)
}

func (w *Workspace) UnsavedWeeks() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return attendance.UnsavedWeeks(w.draft, w.snapshot.Records, w.person, w.weeks)
}

// Save sends every unsaved week in one request. On failure nothing changes
// and the error is returned as is; there is no retry. On success the
// confirmed records are merged, the draft is reseeded and Version moves on.
// The snapshot's server version stays as fetched until the next Reload. A nil
// result with a nil error means there was nothing to save.
func (w *Workspace) Save(ctx context.Context) ([]models.AttendanceRecord, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if w.saving {
		w.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	payloads := attendance.BuildPayloads(w.draft, w.snapshot.Records, w.person, w.weeks, w.snapshot.Roster.DisplayName)
	if len(payloads) == 0 {
		w.mu.Unlock()
		return nil, nil
	}
	w.saving = true
	w.mu.Unlock()

	confirmed, err := w.backend.Submit(ctx, payloads)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.saving = false

	if w.closed {
		w.logger.DebugContext(ctx, "discarding save result for closed workspace", "person", w.person.String())
		return nil, ErrClosed
	}
	if err != nil {
		w.logger.WarnContext(ctx, "save failed",
			"person", w.person.String(),
			"weeks", len(payloads),
			"error", err,
		)
		return nil, err
	}

	snap := w.snapshot
	snap.Records = attendance.Merge(snap.Records, confirmed)
	w.apply(snap)
	return confirmed, nil
}

// Reload fetches a fresh snapshot. The signed-in person's unsaved weeks are
// carried over onto it; every other row takes the server's values.
func (w *Workspace) Reload(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.saving {
		w.mu.Unlock()
		return ErrSaveInProgress
	}
	weeks := slices.Clone(w.weeks)
	w.mu.Unlock()

	snap, err := w.backend.Snapshot(ctx, weeks)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.saving {
		return ErrSaveInProgress
	}

	// A week with no record is only carried when it was actually edited;
	// an untouched empty cell takes whatever the server now has.
	carried := make(map[string]attendance.DaySet)
	for _, week := range w.weeks {
		cell, _ := w.draft.Cell(week, w.person)
		baseline := ""
		if rec, ok := models.Find(w.snapshot.Records, w.person, week); ok {
			baseline = attendance.Canonical(rec.AttendanceDays)
		}
		if cell.String() != baseline {
			carried[week] = cell
		}
	}

	w.apply(snap)
	for week, cell := range carried {
		if slices.Contains(w.weeks, week) {
			w.draft.Set(week, w.person, cell)
		}
	}
	return nil
}

// Close ends the session. A save in flight completes but its result is
// discarded.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}
