package main

import (
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "run periodically on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateSchedule(); err != nil {
			return err
		}

		sched, rec, err := buildScheduler(ctx, cfg)
		if err != nil {
			return err
		}
		defer rec.Close()

		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			return err
		}

		if cfg.Metrics.Addr != "" {
			go func() {
				if err := sched.Metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
					log.WithError(err).Error("metrics server stopped")
				}
			}()
		}

		sched.Start()
		defer sched.Stop()

		if viper.GetBool("run-on-start") {
			log.Info("run-on-start enabled, executing a run now")
			go func() {
				if _, err := sched.RunOnce(ctx); err != nil {
					log.WithError(err).Error("startup run failed")
				}
			}()
		}

		log.Infof("stockwindow is running on %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)
		<-ctx.Done()
		log.Info("shutdown signal received, stopping...")
		return nil
	},
}

func init() {
	scheduleCmd.Flags().String("cron", "", "cron expression with a seconds field")
	scheduleCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	scheduleCmd.Flags().Bool("run-on-start", false, "run once immediately on start")
}
