// Command attendctl edits and views office attendance from a terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"presence/internal/attendance/client"
	"presence/internal/attendance/workspace"
	"presence/internal/identity"
	"presence/internal/platform/logger"
)

type globals struct {
	baseURL string
	token   string
	timeout time.Duration
	verbose bool
	out     io.Writer
}

func (g *globals) logger() *slog.Logger {
	if g.verbose {
		return logger.NewWithWriter(os.Stderr, "debug")
	}
	return logger.NewWithWriter(io.Discard, "error")
}

func (g *globals) client() *client.Client {
	return client.New(g.baseURL, client.WithToken(g.token), client.WithLogger(g.logger()))
}

func (g *globals) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), g.timeout)
}

func (g *globals) openWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	if g.token == "" {
		return nil, fmt.Errorf("a token is required: set PRESENCE_TOKEN or --token")
	}
	me, err := identity.PeekInitials(g.token)
	if err != nil {
		return nil, err
	}
	return workspace.Open(ctx, g.client(), me, workspace.WithLogger(g.logger()))
}

func newRootCommand() *cobra.Command {
	g := &globals{out: os.Stdout}

	root := &cobra.Command{
		Use:           "attendctl",
		Short:         "View and confirm weekly office attendance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			g.out = cmd.OutOrStdout()
		},
	}
	root.PersistentFlags().StringVar(&g.baseURL, "url", envOr("PRESENCE_URL", "http://localhost:8080"), "attendance service URL")
	root.PersistentFlags().StringVar(&g.token, "token", os.Getenv("PRESENCE_TOKEN"), "bearer token")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 30*time.Second, "overall command timeout")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newBoardCommand(g),
		newTodayCommand(g),
		newStatusCommand(g),
		newSetCommand(g),
		newToggleCommand(g),
		newTokenCommand(g),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
