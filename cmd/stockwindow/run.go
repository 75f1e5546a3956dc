package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"StockWindow/internal/collector"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "extract a window from every stock, predict and write the output once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sched, rec, err := buildScheduler(ctx, cfg)
		if err != nil {
			return err
		}
		defer rec.Close()

		report, err := sched.RunOnce(ctx)
		if err != nil {
			return err
		}
		if viper.GetBool("strict") {
			return collector.Failures(report.Failures())
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("strict", false, "exit with an error when any stock failed")
}
