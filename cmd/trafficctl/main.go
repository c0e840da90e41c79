package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trafficctl",
		Short: "Plan events and preview their traffic impact",
		Long: `trafficctl talks to the traffic simulation backend. Describe an event in
conversation, run a simulation, and inspect the per-street congestion overlay
hour by hour, optionally against the no-event baseline.

Configuration is read from the environment (BACKEND_URL, HTTP_ADDR, LOG_LEVEL,
KAFKA_BROKERS, ...).`,
		SilenceUsage: true,
	}
	root.AddCommand(newChatCmd(), newRenderCmd(), newServeCmd())
	return root
}
