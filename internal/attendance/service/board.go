package service

import (
	"context"
	"strings"
	"time"

	"presence/internal/attendance"
	"presence/internal/attendance/models"
	"presence/internal/calendar"
	"presence/internal/leave"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/requestcontext"
)

// ResolveWeek maps "current", "next" or a YYYY-MM-DD date to its week.
// Empty means current.
func (s *Service) ResolveWeek(now time.Time, week string) (calendar.Range, error) {
	weeks := calendar.CurrentAndNext(now.In(s.loc))
	switch strings.ToLower(strings.TrimSpace(week)) {
	case "", "current":
		return weeks[0], nil
	case "next":
		return weeks[1], nil
	}
	t, err := calendar.ParseDate(strings.TrimSpace(week), s.loc)
	if err != nil {
		return calendar.Range{}, dErrors.New(dErrors.CodeValidation, "week must be current, next or YYYY-MM-DD")
	}
	return calendar.WeekRange(calendar.MondayOf(t)), nil
}

// Board resolves every roster member's status for each workday of week.
func (s *Service) Board(ctx context.Context, week string) (models.Board, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.Board")
	defer span.End()

	r, err := s.ResolveWeek(requestcontext.Now(ctx), week)
	if err != nil {
		return models.Board{}, err
	}
	snap, err := s.Snapshot(ctx, []string{r.StartKey()})
	if err != nil {
		return models.Board{}, err
	}
	return BuildBoard(r, snap), nil
}

// BuildBoard resolves the board for week from an already fetched snapshot.
func BuildBoard(week calendar.Range, snap models.Snapshot) models.Board {
	keys := calendar.WorkdayKeys(week)
	board := models.Board{
		WeekStart: week.StartKey(),
		WeekEnd:   week.EndKey(),
		ISOWeek:   week.ISOWeek(),
		Days:      make([]models.BoardDay, 0, len(calendar.Workdays)),
		Rows:      make([]models.BoardRow, 0, len(snap.Roster)),
	}
	for _, d := range calendar.Workdays {
		board.Days = append(board.Days, models.BoardDay{Label: d, Date: keys[d]})
	}

	idx := leave.NewIndex(snap.Leave)
	for _, m := range snap.Roster {
		rec, confirmed := models.Find(snap.Records, m.Initials, board.WeekStart)
		row := models.BoardRow{
			Initials:    m.Initials,
			DisplayName: snap.Roster.DisplayName(m.Initials),
			Level:       m.Level,
			Statuses:    make([]string, 0, len(board.Days)),
			Confirmed:   confirmed,
		}
		personLeave := idx.For(m.Initials)
		for _, d := range board.Days {
			st := attendance.ResolveStatus(rec.AttendanceDays, m.Initials, d.Label, d.Date, personLeave)
			row.Statuses = append(row.Statuses, st.String())
		}
		board.Rows = append(board.Rows, row)
	}
	return board
}

// Today groups members by status for the target day: today until the
// cutoff, then the next working day.
func (s *Service) Today(ctx context.Context) (models.Today, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.Today")
	defer span.End()

	day := calendar.TargetDay(requestcontext.Now(ctx), s.loc, s.cutoff)
	week := calendar.WeekRange(calendar.MondayOf(day))
	snap, err := s.Snapshot(ctx, []string{week.StartKey()})
	if err != nil {
		return models.Today{}, err
	}
	return BuildToday(day, snap), nil
}

// BuildToday groups the snapshot's roster by status on day.
func BuildToday(day time.Time, snap models.Snapshot) models.Today {
	label := calendar.DayLabel(day)
	date := calendar.FormatDate(day)
	weekStart := calendar.FormatDate(calendar.MondayOf(day))
	out := models.Today{
		Date:   date,
		Day:    label,
		Office: []models.TodayEntry{},
		Home:   []models.TodayEntry{},
		Away:   []models.TodayEntry{},
	}
	for _, m := range snap.Roster {
		rec, _ := models.Find(snap.Records, m.Initials, weekStart)
		entry := models.TodayEntry{Initials: m.Initials, DisplayName: snap.Roster.DisplayName(m.Initials)}
		switch attendance.ResolveStatus(rec.AttendanceDays, m.Initials, label, date, snap.Leave) {
		case attendance.StatusOffice:
			out.Office = append(out.Office, entry)
		case attendance.StatusAway:
			out.Away = append(out.Away, entry)
		default:
			out.Home = append(out.Home, entry)
		}
	}
	return out
}
