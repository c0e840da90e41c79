package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/event-traffic-controller/internal/config"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/couchcryptid/event-traffic-controller/internal/overlay"
	"github.com/couchcryptid/event-traffic-controller/internal/session"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Describe an event in conversation and simulate it",
		Long: `Starts an interactive session. Plain lines are sent to the extraction
service; lines starting with / are commands (type /help). The ops server runs
alongside and serves the session state on /session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(func(cfg *config.Config) *slog.Logger {
				return observability.NewConsoleLogger(os.Stderr, cfg)
			})
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctrl := session.NewController(a.gateways(), overlay.NewResolver(overlay.DefaultKeys), a.logger, a.metrics)
			done := a.runOpsServer(ctx, func() any { return ctrl.Status() })

			geo := session.LoadGeometry(ctx, a.client, a.logger, a.metrics)
			r := newREPL(ctrl, geo, cmd.OutOrStdout())
			r.run(ctx, cmd.InOrStdin())

			stop()
			<-done
			a.logger.Info("session closed", "session_id", ctrl.ID())
			return nil
		},
	}
}

// readLines feeds input lines to a channel so the REPL can also watch ctx.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
