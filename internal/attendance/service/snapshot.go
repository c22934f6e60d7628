package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"presence/internal/attendance/models"
	"presence/internal/calendar"
	leavemodels "presence/internal/leave/models"
	rostermodels "presence/internal/roster/models"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/requestcontext"
)

// TrackedWeeks returns the current and next week start keys at now, in the
// office timezone.
func (s *Service) TrackedWeeks(now time.Time) []string {
	return calendar.StartKeys(calendar.CurrentAndNext(now.In(s.loc)))
}

// Snapshot reads roster, leave and records for weekStarts concurrently.
// No weeks means the current and next week. Version is the latest
// confirmation time in milliseconds, or 0 when nothing is confirmed.
func (s *Service) Snapshot(ctx context.Context, weekStarts []string) (models.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.Snapshot")
	defer span.End()

	weeks, err := s.normalizeWeeks(ctx, weekStarts)
	if err != nil {
		span.SetStatus(codes.Error, "invalid weeks")
		return models.Snapshot{}, err
	}
	span.SetAttributes(attribute.StringSlice("attendance.weeks", weeks))

	ctx, cancel := context.WithTimeout(ctx, s.snapshotTimeout)
	defer cancel()

	from := weeks[0]
	to := weekEnd(weeks[len(weeks)-1], s.loc)

	var (
		members rostermodels.Roster
		leaves  []leavemodels.LeaveRecord
		records []models.AttendanceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		defer func() { s.metrics.ObserveSourceLatency("roster", time.Since(start)) }()
		var err error
		members, err = s.roster.Members(gctx)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "roster unavailable")
	})
	g.Go(func() error {
		start := time.Now()
		defer func() { s.metrics.ObserveSourceLatency("leave", time.Since(start)) }()
		var err error
		leaves, err = s.leave.List(gctx, from, to)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "leave unavailable")
	})
	g.Go(func() error {
		start := time.Now()
		defer func() { s.metrics.ObserveSourceLatency("records", time.Since(start)) }()
		var err error
		records, err = s.store.ListByWeeks(gctx, weeks)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "attendance records unavailable")
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "snapshot failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot failed")
		return models.Snapshot{}, err
	}

	if members == nil {
		members = rostermodels.Roster{}
	}
	if leaves == nil {
		leaves = []leavemodels.LeaveRecord{}
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	return models.Snapshot{
		Version: version(records),
		Weeks:   weeks,
		Roster:  members,
		Leave:   leaves,
		Records: records,
	}, nil
}

// normalizeWeeks validates week keys, snaps them to Mondays and sorts them.
func (s *Service) normalizeWeeks(ctx context.Context, weekStarts []string) ([]string, error) {
	if len(weekStarts) == 0 {
		return s.TrackedWeeks(requestcontext.Now(ctx)), nil
	}
	set := make(map[string]struct{}, len(weekStarts))
	for _, w := range weekStarts {
		t, err := calendar.ParseDate(strings.TrimSpace(w), s.loc)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "weeks must be YYYY-MM-DD dates")
		}
		set[calendar.FormatDate(calendar.MondayOf(t))] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out, nil
}

func weekEnd(weekStart string, loc *time.Location) string {
	t, err := calendar.ParseDate(weekStart, loc)
	if err != nil {
		return weekStart
	}
	return calendar.WeekRange(t).EndKey()
}

func version(records []models.AttendanceRecord) int64 {
	var v int64
	for _, r := range records {
		if r.ConfirmedAt != nil && r.ConfirmedAt.UnixMilli() > v {
			v = r.ConfirmedAt.UnixMilli()
		}
	}
	return v
}
