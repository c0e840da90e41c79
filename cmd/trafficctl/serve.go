package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run only the ops server (health, readiness, metrics)",
		Long: `Runs the ops HTTP server without an interactive session. Readiness
follows the traffic backend's hello endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(observability.NewLogger)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			probeCtx, cancel := context.WithTimeout(ctx, a.cfg.BackendTimeout)
			if err := a.client.CheckReadiness(probeCtx); err != nil {
				a.logger.Warn("backend not reachable yet", "error", err)
			}
			cancel()

			done := a.runOpsServer(ctx, nil)

			<-ctx.Done()
			a.logger.Info("shutting down")
			<-done
			a.logger.Info("shutdown complete")
			return nil
		},
	}
}
