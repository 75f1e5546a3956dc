package main

import (
	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"StockWindow/internal/config"
)

var RootCmd = &cobra.Command{
	Use:   "stockwindow",
	Short: "extract stock price windows and predict the next values",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// cmd.Flags() holds the local flags of the executed command plus every persistent one.
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		setupLogging()
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "debug flag")
	RootCmd.PersistentFlags().String("config", "configs/config.yaml", "config file")
	RootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file")

	RootCmd.PersistentFlags().String("data", "", "directory holding one sub-directory of csv files per exchange")
	RootCmd.PersistentFlags().String("output", "", "output directory")
	RootCmd.PersistentFlags().Int("per-exchange", 0, "number of stocks to read from each exchange")
	RootCmd.PersistentFlags().Int("window", 0, "window length in days")
	RootCmd.PersistentFlags().Int("count", 0, "number of values to predict")
	RootCmd.PersistentFlags().String("start", "", "explicit window start date, DD-MM-YYYY")
	RootCmd.PersistentFlags().Int64("seed", 0, "random seed for window selection, 0 uses the clock")
	RootCmd.PersistentFlags().Int("workers", 0, "instruments processed in parallel")
	RootCmd.PersistentFlags().Bool("fail-fast", false, "abort the run on the first failed instrument")
	RootCmd.PersistentFlags().Bool("replay", false, "reuse the windows remembered in the manifest")
	RootCmd.PersistentFlags().String("manifest", "", "manifest file")
	RootCmd.PersistentFlags().String("db", "", "sqlite history database")

	RootCmd.AddCommand(runCmd, scheduleCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Fatalf("cannot execute command")
	}
}

func setupLogging() {
	log.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true})

	logger := log.StandardLogger()
	if viper.GetBool("debug") {
		logger.SetLevel(log.DebugLevel)
	}

	if file := viper.GetString("log-file"); file != "" {
		logger.AddHook(lfshook.NewHook(
			lfshook.PathMap{
				log.DebugLevel: file,
				log.InfoLevel:  file,
				log.WarnLevel:  file,
				log.ErrorLevel: file,
				log.FatalLevel: file,
			},
			&log.JSONFormatter{},
		))
	}
}

// loadConfig reads the config file and applies the command line flags over it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	cfg.Override(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
