// Package interval picks the date window to extract from an instrument.
package interval

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"StockWindow/internal/model"
)

// RandSource is the subset of *rand.Rand used by Selector.
type RandSource interface {
	Intn(n int) int
}

// Selector derives a window inside a known date range.
type Selector struct {
	Rand RandSource
}

// NewSelector creates a Selector drawing random offsets from r.
func NewSelector(r RandSource) *Selector {
	return &Selector{Rand: r}
}

// Select returns the window of windowLen days to extract.
//
// With an explicit start the window is [start, start+windowLen-1] and no bounds
// check is made against known; the extractor rejects windows the data cannot fill.
// Without one, a start offset is drawn uniformly from [0, slack] where
// slack = span(known) - windowLen.
func (s *Selector) Select(instrument string, known model.DateRange, windowLen int, explicitStart *time.Time) (model.DateRange, error) {
	if windowLen <= 0 {
		return model.DateRange{}, fmt.Errorf("%w: window length must be positive, got %d", model.ErrInvalidWindow, windowLen)
	}

	if explicitStart != nil {
		start := model.Day(*explicitStart)
		return model.DateRange{Start: start, End: model.AddDays(start, windowLen-1)}, nil
	}

	slack := known.Span() - windowLen
	if slack < 0 {
		return model.DateRange{}, &model.InsufficientDataError{
			Instrument: instrument,
			Need:       windowLen,
			Have:       known.Span(),
		}
	}
	if s.Rand == nil {
		return model.DateRange{}, fmt.Errorf("interval: no random source configured")
	}

	start := model.AddDays(known.Start, s.Rand.Intn(slack+1))
	return model.DateRange{Start: start, End: model.AddDays(start, windowLen-1)}, nil
}

// SeededSource returns a random source for one instrument. The source depends
// only on seed and key, so parallel runs stay reproducible whatever the
// scheduling order.
func SeededSource(seed int64, key string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
}

// ClockSeed draws a non-zero seed from the clock.
func ClockSeed() int64 {
	if seed := time.Now().UnixNano(); seed != 0 {
		return seed
	}
	return 1
}
