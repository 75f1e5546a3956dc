package recorder

import "StockWindow/internal/model"

// WindowRecord holds one extracted window with its prediction.
type WindowRecord struct {
	Exchange   string
	Instrument string
	Window     model.TimeSeries // dense window, before prediction
	Prediction []float64
	Summary    model.WindowSummary
}

// FailureEvent records an instrument that could not be processed.
type FailureEvent struct {
	Exchange   string
	Instrument string
	Kind       string // see model.ErrorKind
	Message    string
}

// Recorder persists run history for analysis.
type Recorder interface {
	RecordWindow(rec *WindowRecord) error
	RecordFailure(evt *FailureEvent) error
	Close() error
}

// FromResult converts a pipeline result into what the recorder stores.
// Exactly one of the returned values is non-nil.
func FromResult(res *model.WindowResult) (*WindowRecord, *FailureEvent) {
	if res.Failed() {
		return nil, &FailureEvent{
			Exchange:   res.Instrument.Exchange,
			Instrument: res.Instrument.Name,
			Kind:       model.ErrorKind(res.Err),
			Message:    res.Err.Error(),
		}
	}
	return &WindowRecord{
		Exchange:   res.Instrument.Exchange,
		Instrument: res.Instrument.Name,
		Window:     res.Window,
		Prediction: res.Prediction,
		Summary:    res.Summary,
	}, nil
}
