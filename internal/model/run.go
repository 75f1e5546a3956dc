package model

import "time"

// WindowResult is the outcome of running one instrument through the pipeline.
type WindowResult struct {
	Instrument Instrument
	Window     TimeSeries // dense extracted window
	Extended   TimeSeries // window followed by the predicted values
	Prediction []float64
	Summary    WindowSummary
	Seed       int64 // seed random windows were drawn with
	Err        error
}

// Failed reports whether the instrument could not be processed.
func (r *WindowResult) Failed() bool {
	return r.Err != nil
}

// RunReport aggregates a complete run over all instruments.
type RunReport struct {
	StartedAt time.Time
	Duration  time.Duration
	Results   []*WindowResult
	Written   int
}

// Succeeded returns the results without error.
func (r *RunReport) Succeeded() []*WindowResult {
	var out []*WindowResult
	for _, res := range r.Results {
		if !res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Failures returns the results that carry an error.
func (r *RunReport) Failures() []*WindowResult {
	var out []*WindowResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}
