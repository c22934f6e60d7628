package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"presence/internal/attendance"
	"presence/internal/attendance/events"
	"presence/internal/attendance/models"
	"presence/internal/attendance/store"
	"presence/internal/calendar"
	rostermodels "presence/internal/roster/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/requestcontext"
)

const maxBatchSize = 52

// Confirm validates the whole batch and writes every row in one
// transaction. It returns one confirmed record per payload, in payload
// order. actor must own every payload.
func (s *Service) Confirm(ctx context.Context, actor id.Initials, payloads []models.SavePayload) ([]models.AttendanceRecord, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.Confirm")
	defer span.End()
	span.SetAttributes(attribute.Int("attendance.batch_size", len(payloads)))

	records, err := s.confirm(ctx, actor, payloads)
	if err != nil {
		code := dErrors.CodeOf(err)
		s.metrics.IncSaveFailure(string(code))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		return nil, err
	}
	s.metrics.IncSaveConfirmed(len(records))
	return records, nil
}

func (s *Service) confirm(ctx context.Context, actor id.Initials, payloads []models.SavePayload) ([]models.AttendanceRecord, error) {
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no signed-in person")
	}
	if len(payloads) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one week is required")
	}
	if len(payloads) > maxBatchSize {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("at most %d weeks per save", maxBatchSize))
	}

	members, err := s.roster.Members(ctx)
	if err != nil {
		// Level and display name are optional on a record.
		s.logger.WarnContext(ctx, "roster unavailable during save",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		members = nil
	}

	confirmedAt := requestcontext.Now(ctx).UTC()
	records := make([]models.AttendanceRecord, 0, len(payloads))
	seen := make(map[string]struct{}, len(payloads))
	for i, p := range payloads {
		r, err := s.toRecord(actor, p, members, confirmedAt)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeOf(err), fmt.Sprintf("payload %d", i))
		}
		slot := r.Initials.Key() + "|" + r.WeekStart
		if _, dup := seen[slot]; dup {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("payload %d repeats week %s", i, r.WeekStart))
		}
		seen[slot] = struct{}{}
		records = append(records, r)
	}

	var stored []models.AttendanceRecord
	txCtx := withTxPerson(ctx, actor.Key())
	err = s.tx.RunInTx(txCtx, func(st store.Store) error {
		var err error
		stored, err = st.UpsertBatch(txCtx, records)
		return err
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeTimeout) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "failed to save attendance",
			"request_id", requestcontext.RequestID(ctx),
			"person", actor.String(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save attendance")
	}

	s.logger.InfoContext(ctx, "attendance confirmed",
		"request_id", requestcontext.RequestID(ctx),
		"person", actor.String(),
		"weeks", len(stored),
	)
	s.publish(ctx, stored)
	return stored, nil
}

func (s *Service) toRecord(actor id.Initials, p models.SavePayload, members rostermodels.Roster, confirmedAt time.Time) (models.AttendanceRecord, error) {
	person, err := id.ParseInitials(p.PersonIdentifier)
	if err != nil {
		return models.AttendanceRecord{}, dErrors.New(dErrors.CodeValidation, "invalid personIdentifier")
	}
	if person.Key() != actor.Key() {
		return models.AttendanceRecord{}, dErrors.New(dErrors.CodeForbidden, "cannot save attendance for another person")
	}
	monday, err := calendar.ParseDate(p.WeekStart, s.loc)
	if err != nil {
		return models.AttendanceRecord{}, dErrors.New(dErrors.CodeValidation, "weekStart must be YYYY-MM-DD")
	}
	if monday.Weekday() != time.Monday {
		return models.AttendanceRecord{}, dErrors.New(dErrors.CodeValidation, "weekStart must be a Monday")
	}
	days, err := attendance.ParseDaySetStrict(p.AttendanceDays)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	week := calendar.WeekRange(monday)
	r := models.AttendanceRecord{
		ID:             id.NewRecordID(),
		Initials:       person,
		DisplayName:    p.DisplayName,
		WeekStart:      week.StartKey(),
		WeekEnd:        week.EndKey(),
		ISOWeek:        week.ISOWeek(),
		AttendanceDays: days.String(),
		ConfirmedAt:    &confirmedAt,
	}
	if m, ok := members.Find(person); ok {
		r.Level = m.Level
		if r.DisplayName == "" {
			r.DisplayName = m.DisplayName
		}
	}
	if r.DisplayName == "" {
		r.DisplayName = person.String()
	}
	return r, nil
}

// publish never fails the save; the records are already committed.
func (s *Service) publish(ctx context.Context, stored []models.AttendanceRecord) {
	if s.publisher == nil || len(stored) == 0 {
		return
	}
	evs := events.FromRecords(stored, requestcontext.RequestID(ctx))
	if err := s.publisher.Publish(ctx, evs); err != nil {
		s.metrics.IncEvents("failed", len(evs))
		s.logger.WarnContext(ctx, "failed to publish attendance events",
			"request_id", requestcontext.RequestID(ctx),
			"count", len(evs),
			"error", err,
		)
		return
	}
	s.metrics.IncEvents("published", len(evs))
}
