package attendance

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetLastStatusCode() int
	DecodeLast(v any) error
	GetSignedInInitials() string
}

// RegisterSteps registers attendance-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &attendanceSteps{tc: tc}

	ctx.Step(`^I load the attendance snapshot$`, steps.loadSnapshot)
	ctx.Step(`^I save "([^"]*)" for the (current|next) week$`, steps.saveOwnWeek)
	ctx.Step(`^I save "([^"]*)" for "([^"]*)" for the (current|next) week$`, steps.saveForPerson)
	ctx.Step(`^I request the board for the (current|next) week$`, steps.requestBoard)

	ctx.Step(`^"([^"]*)" should have no confirmed record for the (current|next) week$`, steps.shouldHaveNoRecord)
	ctx.Step(`^"([^"]*)" should have confirmed "([^"]*)" for the (current|next) week$`, steps.shouldHaveConfirmed)
	ctx.Step(`^the board should show "([^"]*)" as "([^"]*)" on "([^"]*)"$`, steps.boardShouldShow)
}

type snapshot struct {
	Version int64    `json:"version"`
	Weeks   []string `json:"weeks"`
	Records []struct {
		PersonIdentifier string `json:"personIdentifier"`
		WeekStart        string `json:"weekStart"`
		AttendanceDays   string `json:"attendanceDays"`
		ConfirmedAt      string `json:"confirmedAt"`
	} `json:"records"`
}

type board struct {
	Days []struct {
		Label string `json:"label"`
	} `json:"days"`
	Rows []struct {
		Initials string   `json:"personIdentifier"`
		Statuses []string `json:"statuses"`
	} `json:"rows"`
}

type attendanceSteps struct {
	tc   TestContext
	snap snapshot
}

func (s *attendanceSteps) loadSnapshot(ctx context.Context) error {
	if err := s.tc.GET("/api/attendance/snapshot"); err != nil {
		return err
	}
	s.snap = snapshot{}
	if s.tc.GetLastStatusCode() != 200 {
		return nil
	}
	return s.tc.DecodeLast(&s.snap)
}

func (s *attendanceSteps) week(which string) (string, error) {
	if len(s.snap.Weeks) < 2 {
		if err := s.loadSnapshot(context.Background()); err != nil {
			return "", err
		}
	}
	if len(s.snap.Weeks) < 2 {
		return "", fmt.Errorf("snapshot tracks %d weeks", len(s.snap.Weeks))
	}
	if which == "next" {
		return s.snap.Weeks[1], nil
	}
	return s.snap.Weeks[0], nil
}

func (s *attendanceSteps) saveOwnWeek(ctx context.Context, days, which string) error {
	return s.save(days, "", which)
}

func (s *attendanceSteps) saveForPerson(ctx context.Context, days, person, which string) error {
	return s.save(days, person, which)
}

func (s *attendanceSteps) save(days, person, which string) error {
	week, err := s.week(which)
	if err != nil {
		return err
	}
	body := []map[string]string{{
		"personIdentifier": person,
		"weekStart":        week,
		"attendanceDays":   days,
	}}
	if person == "" {
		body[0]["personIdentifier"] = s.tc.GetSignedInInitials()
	}
	return s.tc.POST("/api/attendance", body)
}

func (s *attendanceSteps) requestBoard(ctx context.Context, which string) error {
	return s.tc.GET("/api/attendance/board?week=" + url.QueryEscape(which))
}

func (s *attendanceSteps) find(person, week string) (string, bool) {
	for _, r := range s.snap.Records {
		if strings.EqualFold(r.PersonIdentifier, person) && r.WeekStart == week && r.ConfirmedAt != "" {
			return r.AttendanceDays, true
		}
	}
	return "", false
}

func (s *attendanceSteps) shouldHaveNoRecord(ctx context.Context, person, which string) error {
	if err := s.loadSnapshot(ctx); err != nil {
		return err
	}
	week, err := s.week(which)
	if err != nil {
		return err
	}
	if days, ok := s.find(person, week); ok {
		return fmt.Errorf("%s already confirmed %q for %s", person, days, week)
	}
	return nil
}

func (s *attendanceSteps) shouldHaveConfirmed(ctx context.Context, person, days, which string) error {
	if err := s.loadSnapshot(ctx); err != nil {
		return err
	}
	week, err := s.week(which)
	if err != nil {
		return err
	}
	got, ok := s.find(person, week)
	if !ok {
		return fmt.Errorf("%s has no confirmed record for %s", person, week)
	}
	if got != days {
		return fmt.Errorf("expected %q, got %q", days, got)
	}
	return nil
}

func (s *attendanceSteps) boardShouldShow(ctx context.Context, person, status, day string) error {
	var b board
	if err := s.tc.DecodeLast(&b); err != nil {
		return err
	}
	col := -1
	for i, d := range b.Days {
		if d.Label == day {
			col = i
		}
	}
	if col < 0 {
		return fmt.Errorf("board has no %s column", day)
	}
	for _, r := range b.Rows {
		if strings.EqualFold(r.Initials, person) {
			if got := r.Statuses[col]; got != status {
				return fmt.Errorf("expected %s on %s to be %s, got %s", person, day, status, got)
			}
			return nil
		}
	}
	return fmt.Errorf("board has no row for %s", person)
}
