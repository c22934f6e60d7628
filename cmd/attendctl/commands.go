package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"presence/internal/attendance"
	"presence/internal/attendance/models"
	"presence/internal/attendance/workspace"
	"presence/internal/calendar"
	"presence/internal/identity"
	id "presence/pkg/domain"
)

func newBoardCommand(g *globals) *cobra.Command {
	var (
		week string
		xlsx string
	)
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show everyone's resolved week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := g.context(cmd)
			defer cancel()

			if xlsx != "" {
				f, err := os.Create(xlsx)
				if err != nil {
					return err
				}
				if err := g.client().ExportBoard(ctx, week, f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(g.out, "wrote %s\n", xlsx)
				return nil
			}

			board, err := g.client().Board(ctx, week)
			if err != nil {
				return err
			}
			printBoard(g, board)
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "current", "current, next or a YYYY-MM-DD date")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write the board as a workbook to this path")
	return cmd
}

func printBoard(g *globals, board models.Board) {
	fmt.Fprintf(g.out, "Week %d (%s to %s)\n", board.ISOWeek, board.WeekStart, board.WeekEnd)
	tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	header := []string{"WHO"}
	for _, d := range board.Days {
		header = append(header, strings.ToUpper(d.Label[:3]))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range board.Rows {
		name := r.DisplayName
		if !r.Confirmed {
			name += " *"
		}
		fmt.Fprintln(tw, name+"\t"+strings.Join(r.Statuses, "\t"))
	}
	_ = tw.Flush()
}

func newTodayCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Who is in the office today, or on the next working day after the cutoff",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := g.context(cmd)
			defer cancel()

			today, err := g.client().Today(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(g.out, "%s %s\n", today.Day, today.Date)
			for _, group := range []struct {
				label   string
				entries []models.TodayEntry
			}{
				{"office", today.Office},
				{"home", today.Home},
				{"away", today.Away},
			} {
				names := make([]string, 0, len(group.entries))
				for _, e := range group.entries {
					names = append(names, e.DisplayName)
				}
				fmt.Fprintf(g.out, "  %-6s %s\n", group.label, strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func newStatusCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your attendance for the tracked weeks and what is unsaved",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := g.context(cmd)
			defer cancel()

			ws, err := g.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()
			printStatus(g, ws)
			return nil
		},
	}
}

func printStatus(g *globals, ws *workspace.Workspace) {
	me := ws.Person()
	unsaved := map[string]bool{}
	for _, w := range ws.UnsavedWeeks() {
		unsaved[w] = true
	}
	tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WEEK\tMON\tTUE\tWED\tTHU\tFRI\t")
	for _, week := range ws.Weeks() {
		cells := []string{week}
		for _, day := range calendar.Workdays {
			cells = append(cells, ws.Status(me, day, week).String())
		}
		mark := ""
		if unsaved[week] {
			mark = "unsaved"
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t"+mark)
	}
	_ = tw.Flush()
}

// resolveTrackedWeek maps "current", "next" or a date onto a tracked week.
func resolveTrackedWeek(ws *workspace.Workspace, arg string) (string, error) {
	weeks := ws.Weeks()
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "current":
		if len(weeks) > 0 {
			return weeks[0], nil
		}
	case "next":
		if len(weeks) > 1 {
			return weeks[1], nil
		}
	default:
		t, err := calendar.ParseDate(strings.TrimSpace(arg), nil)
		if err != nil {
			return "", fmt.Errorf("week must be current, next or YYYY-MM-DD")
		}
		return calendar.FormatDate(calendar.MondayOf(t)), nil
	}
	return "", fmt.Errorf("week %q is not tracked", arg)
}

func saveAndReport(cmd *cobra.Command, g *globals, ws *workspace.Workspace) error {
	ctx, cancel := g.context(cmd)
	defer cancel()

	confirmed, err := ws.Save(ctx)
	if err != nil {
		return fmt.Errorf("save failed, nothing was changed: %w", err)
	}
	if confirmed == nil {
		fmt.Fprintln(g.out, "nothing to save")
	} else {
		fmt.Fprintf(g.out, "saved %d week(s)\n", len(confirmed))
	}
	printStatus(g, ws)
	return nil
}

func newSetCommand(g *globals) *cobra.Command {
	var (
		week   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "set [DAYS]",
		Short: "Set your office days for a week, e.g. set Mon,Wed --week next",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			want, err := attendance.ParseDaySetStrict(raw)
			if err != nil {
				return err
			}

			ctx, cancel := g.context(cmd)
			defer cancel()
			ws, err := g.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			target, err := resolveTrackedWeek(ws, week)
			if err != nil {
				return err
			}
			have, _ := attendance.NewDaySet(ws.Days(ws.Person(), target)...)
			for _, day := range calendar.Workdays {
				if have.Has(day) != want.Has(day) {
					if err := ws.ToggleDay(target, day); err != nil {
						return err
					}
				}
			}
			if dryRun {
				printStatus(g, ws)
				return nil
			}
			return saveAndReport(cmd, g, ws)
		},
	}
	cmd.Flags().StringVar(&week, "week", "current", "current, next or a YYYY-MM-DD date")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without saving")
	return cmd
}

func newToggleCommand(g *globals) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "toggle DAY...",
		Short: "Flip office days for a week and save",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := g.context(cmd)
			defer cancel()
			ws, err := g.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			target, err := resolveTrackedWeek(ws, week)
			if err != nil {
				return err
			}
			for _, day := range args {
				if err := ws.ToggleDay(target, day); err != nil {
					return err
				}
			}
			return saveAndReport(cmd, g, ws)
		},
	}
	cmd.Flags().StringVar(&week, "week", "current", "current, next or a YYYY-MM-DD date")
	return cmd
}

func newTokenCommand(g *globals) *cobra.Command {
	var (
		key string
		ttl time.Duration
	)
	cmd := &cobra.Command{
		Use:    "token INITIALS",
		Short:  "Mint a development token",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if key == "" {
				return fmt.Errorf("--key or JWT_SIGNING_KEY is required")
			}
			initials, err := id.ParseInitials(args[0])
			if err != nil {
				return err
			}
			token, err := identity.NewTokenService(key, identity.DefaultIssuer, identity.DefaultAudience).Issue(initials, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(g.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", os.Getenv("JWT_SIGNING_KEY"), "signing key")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
