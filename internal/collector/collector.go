package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"StockWindow/internal/calculator"
	"StockWindow/internal/extract"
	"StockWindow/internal/interval"
	"StockWindow/internal/metrics"
	"StockWindow/internal/model"
)

var log = logrus.WithField("component", "collector")

// MockSource serves in-memory records for development and testing.
type MockSource struct {
	Instruments []model.Instrument
	Records     map[string][]model.RawRecord // keyed by Instrument.Key()
	RangeErr    map[string]error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) List() ([]model.Instrument, error) {
	return m.Instruments, nil
}

func (m *MockSource) KnownRange(inst model.Instrument) (model.DateRange, error) {
	if err := m.RangeErr[inst.Key()]; err != nil {
		return model.DateRange{}, err
	}
	recs := m.Records[inst.Key()]
	if len(recs) == 0 {
		return model.DateRange{}, model.NewMalformedRecord(inst.Name, 1, nil, errors.New("no records"))
	}
	first, err := extract.Decode(inst.Name, recs[0])
	if err != nil {
		return model.DateRange{}, err
	}
	last, err := extract.Decode(inst.Name, recs[len(recs)-1])
	if err != nil {
		return model.DateRange{}, err
	}
	return model.NewDateRange(first.Date, last.Date)
}

func (m *MockSource) Open(inst model.Instrument) (Records, error) {
	return nopCloser{extract.NewSliceIterator(m.Records[inst.Key()])}, nil
}

// Add registers an instrument with n consecutive daily records starting at start.
func (m *MockSource) Add(exchange, name string, start time.Time, n int, basePrice float64) model.Instrument {
	inst := model.Instrument{Exchange: exchange, Name: name}
	if m.Records == nil {
		m.Records = make(map[string][]model.RawRecord)
	}
	m.Instruments = append(m.Instruments, inst)
	m.Records[inst.Key()] = generateMockRecords(name, start, n, basePrice)
	return inst
}

type nopCloser struct {
	extract.RecordIterator
}

func (nopCloser) Close() error { return nil }

func generateMockRecords(name string, start time.Time, count int, basePrice float64) []model.RawRecord {
	recs := make([]model.RawRecord, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i%7-3)*0.01)
		recs[i] = model.RawRecord{
			Line:       i + 1,
			Instrument: name,
			Date:       model.FormatDate(model.AddDays(start, i)),
			Value:      strconv.FormatFloat(p, 'f', -1, 64),
		}
	}
	return recs
}

// StartLookup supplies a remembered start date for an instrument.
type StartLookup interface {
	Start(key string) (time.Time, bool)
}

// Options configures a Collector.
type Options struct {
	WindowLen       int
	PredictionCount int
	Start           *time.Time // explicit start date for every instrument
	Seed            int64      // 0 draws one seed from the clock per run
	Workers         int
	FailFast        bool
}

// Collector runs instruments through window selection, extraction and prediction.
type Collector struct {
	Source  Source
	Opts    Options
	Replay  StartLookup // optional, consulted when Opts.Start is nil
	Metrics *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(source Source, opts Options) *Collector {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Collector{Source: source, Opts: opts}
}

// runSeed returns the configured seed, or a fresh one from the clock.
func (c *Collector) runSeed() int64 {
	if c.Opts.Seed != 0 {
		return c.Opts.Seed
	}
	return interval.ClockSeed()
}

func (c *Collector) startFor(inst model.Instrument) *time.Time {
	if c.Opts.Start != nil {
		return c.Opts.Start
	}
	if c.Replay != nil {
		if t, ok := c.Replay.Start(inst.Key()); ok {
			return &t
		}
	}
	return nil
}

// Collect processes a single instrument. Failures are reported in the result.
func (c *Collector) Collect(inst model.Instrument) *model.WindowResult {
	return c.collectSeeded(inst, c.runSeed())
}

func (c *Collector) collectSeeded(inst model.Instrument, seed int64) *model.WindowResult {
	res := &model.WindowResult{Instrument: inst, Seed: seed}
	res.Err = c.collect(res, seed)

	logger := log.WithField("instrument", inst.Key())
	if res.Err != nil {
		logger.WithError(res.Err).Warn("instrument failed")
		return res
	}
	logger.Infof("window %s, predicted %v", res.Window.Range, res.Prediction)
	return res
}

func (c *Collector) collect(res *model.WindowResult, seed int64) error {
	inst := res.Instrument

	known, err := c.Source.KnownRange(inst)
	if err != nil {
		return fmt.Errorf("known range: %w", err)
	}
	res.Instrument.Known = known

	selector := interval.NewSelector(interval.SeededSource(seed, inst.Key()))
	window, err := selector.Select(inst.Name, known, c.Opts.WindowLen, c.startFor(inst))
	if err != nil {
		return fmt.Errorf("select window: %w", err)
	}

	recs, err := c.Source.Open(inst)
	if err != nil {
		return fmt.Errorf("open records: %w", err)
	}
	defer recs.Close()

	began := time.Now()
	series, err := extract.Extract(inst.Name, recs, window)
	c.Metrics.ObserveExtract(time.Since(began))
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	res.Window = series

	prediction, err := calculator.Predict(series.Values, c.Opts.PredictionCount)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	res.Prediction = prediction
	res.Extended = series.Extend(prediction)

	if res.Summary, err = calculator.Summarize(series.Values); err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	return nil
}

// CollectAll processes every instrument of the source in parallel. Results
// come back in listing order. With FailFast the first failure cancels the
// remaining work and is returned; otherwise failures stay in their results.
func (c *Collector) CollectAll(ctx context.Context) ([]*model.WindowResult, error) {
	instruments, err := c.Source.List()
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	// one seed for the whole run, mixed with each instrument key
	seed := c.runSeed()
	log.Infof("collecting %d instruments from %s source, seed %d", len(instruments), c.Source.Name(), seed)

	results := make([]*model.WindowResult, len(instruments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Opts.Workers)

	for i, inst := range instruments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := c.collectSeeded(inst, seed)
			results[i] = res
			if res.Err != nil && c.Opts.FailFast {
				return fmt.Errorf("%s: %w", inst.Key(), res.Err)
			}
			return nil
		})
	}
	err = g.Wait()

	done := results[:0]
	for _, r := range results {
		if r != nil {
			done = append(done, r)
		}
	}
	return done, err
}

// Failures combines the errors of failed results, keyed by instrument.
func Failures(results []*model.WindowResult) error {
	var err error
	for _, r := range results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Instrument.Key(), r.Err))
		}
	}
	return err
}
