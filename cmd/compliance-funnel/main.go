package main

import (
	"fmt"
	"os"

	"github.com/AtRiskMedia/compliance-funnel/internal/application/startup"
	"github.com/AtRiskMedia/compliance-funnel/pkg/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return startup.Initialize(cfg)
		},
	}

	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Delete reports older than the retention window and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return startup.Sweep(cmd.Context(), cfg)
		},
	}

	root := &cobra.Command{
		Use:           "compliance-funnel",
		Short:         "Compliance scan funnel: reports, checkout and retention",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, sweep)
	return root
}
