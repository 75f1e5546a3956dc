package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"StockWindow/internal/collector"
	"StockWindow/internal/csvstore"
	"StockWindow/internal/manifest"
	"StockWindow/internal/metrics"
	"StockWindow/internal/model"
	"StockWindow/internal/notifier"
	"StockWindow/internal/recorder"
)

var log = logrus.WithField("component", "scheduler")

const notifyRetries = 3

// ErrRunInProgress is returned by RunOnce while another run is still busy.
var ErrRunInProgress = errors.New("a run is already in progress")

// Notifier delivers run summaries.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the collect, write and record pipeline once or on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Writer    *csvstore.Writer
	Recorder  recorder.Recorder
	Manifest  *manifest.Manager // optional
	Notifier  Notifier          // optional
	Metrics   *metrics.Metrics  // optional
	Ctx       context.Context

	running sync.Mutex
}

// NewScheduler creates a new Scheduler. Scheduled runs never overlap: a tick
// that fires while the previous run is still busy is skipped.
func NewScheduler(ctx context.Context, col *collector.Collector, w *csvstore.Writer, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		Collector: col,
		Writer:    w,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// Register schedules a run for every tick of cronExpr (with a seconds field).
func (s *Scheduler) Register(cronExpr string) error {
	if _, err := s.Cron.AddFunc(cronExpr, s.runTask); err != nil {
		return fmt.Errorf("register run task %q: %w", cronExpr, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

func (s *Scheduler) runTask() {
	_, err := s.RunOnce(s.Ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		log.Warn("previous run still busy, skipping tick")
	case err != nil:
		log.WithError(err).Error("scheduled run failed")
	}
}

// RunOnce performs one complete run over all instruments. An error is
// returned only when the run was aborted or another run is still busy;
// per-instrument failures are reported in the returned RunReport.
func (s *Scheduler) RunOnce(ctx context.Context) (*model.RunReport, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	report := &model.RunReport{StartedAt: time.Now()}
	log.Info("starting run")

	results, err := s.Collector.CollectAll(ctx)
	report.Results = results
	if err != nil {
		s.account(report)
		s.record(report)
		report.Duration = time.Since(report.StartedAt)
		s.Metrics.RunDone(report.Duration, report.StartedAt)
		s.trySend(ctx, notifier.FormatRunError(err))
		return report, fmt.Errorf("run aborted: %w", err)
	}

	for _, res := range report.Succeeded() {
		path, werr := s.Writer.Write(res.Instrument, res.Extended)
		if werr != nil {
			res.Err = fmt.Errorf("write output: %w", werr)
			log.WithError(werr).WithField("instrument", res.Instrument.Key()).Error("write failed")
			continue
		}
		report.Written++
		log.WithField("instrument", res.Instrument.Key()).Debugf("wrote %s", path)
	}

	s.account(report)
	s.record(report)

	if s.Manifest != nil {
		if err := s.Manifest.Remember(report.Succeeded()); err != nil {
			log.WithError(err).Error("save manifest")
		}
	}

	report.Duration = time.Since(report.StartedAt)
	s.Metrics.RunDone(report.Duration, report.StartedAt)

	if failed := report.Failures(); len(failed) > 0 {
		log.WithError(collector.Failures(failed)).Warnf("%d of %d instruments failed", len(failed), len(report.Results))
	}
	log.Infof("run finished in %s: %d written", report.Duration.Round(time.Millisecond), report.Written)

	s.trySend(ctx, notifier.FormatRunSummary(report))
	return report, nil
}

// account counts the final outcome of every instrument, after output was written.
func (s *Scheduler) account(report *model.RunReport) {
	for _, res := range report.Results {
		if res.Failed() {
			s.Metrics.InstrumentDone(model.ErrorKind(res.Err), 0)
			continue
		}
		s.Metrics.InstrumentDone("", len(res.Prediction))
	}
}

func (s *Scheduler) record(report *model.RunReport) {
	for _, res := range report.Results {
		rec, evt := recorder.FromResult(res)
		var err error
		if rec != nil {
			err = s.Recorder.RecordWindow(rec)
		} else {
			err = s.Recorder.RecordFailure(evt)
		}
		if err != nil {
			log.WithError(err).WithField("instrument", res.Instrument.Key()).Error("record result")
		}
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, notifyRetries); err != nil {
		log.WithError(err).Error("send notification")
	}
}
