package main

import (
	"context"

	log "github.com/sirupsen/logrus"

	"StockWindow/internal/collector"
	"StockWindow/internal/config"
	"StockWindow/internal/csvstore"
	"StockWindow/internal/manifest"
	"StockWindow/internal/metrics"
	"StockWindow/internal/notifier"
	"StockWindow/internal/recorder"
	"StockWindow/internal/scheduler"
)

// buildScheduler wires every component from cfg. The returned recorder must be closed by the caller.
func buildScheduler(ctx context.Context, cfg *config.Config) (*scheduler.Scheduler, recorder.Recorder, error) {
	start, err := cfg.Start()
	if err != nil {
		return nil, nil, err
	}

	source := collector.NewFileSource(cfg.DataPath, cfg.StocksPerExchange)
	col := collector.NewCollector(source, collector.Options{
		WindowLen:       cfg.WindowLength,
		PredictionCount: cfg.PredictionCount,
		Start:           start,
		Seed:            cfg.Seed,
		Workers:         cfg.Workers,
		FailFast:        cfg.FailFast,
	})
	col.Metrics = metrics.NewMetrics()

	mgr, err := manifest.NewManager(cfg.Manifest.Path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Manifest.Replay {
		log.Infof("replaying windows from %s", cfg.Manifest.Path)
		col.Replay = mgr
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	sched := scheduler.NewScheduler(ctx, col, csvstore.NewWriter(cfg.OutputPath), rec)
	sched.Manifest = mgr
	sched.Metrics = col.Metrics

	if cfg.TelegramEnabled() {
		sched.Notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	log.Infof("data source: %s (%s), output: %s", source.Name(), cfg.DataPath, cfg.OutputPath)
	return sched, rec, nil
}
