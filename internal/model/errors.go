package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientData matches any InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMalformedRecord matches any MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrEmptySeries is returned when a series is too short to predict from.
	ErrEmptySeries = errors.New("series needs at least 2 values")

	// ErrInvalidWindow is returned for a window or prediction count the caller cannot ask for.
	ErrInvalidWindow = errors.New("invalid window")
)

// InsufficientDataError reports that a window cannot be satisfied from the available records.
type InsufficientDataError struct {
	Instrument string
	Need       int
	Have       int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough datapoints in %s: need %d, have %d", e.Instrument, e.Need, e.Have)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// MalformedRecordError reports a record that violates the id,date,value schema.
type MalformedRecordError struct {
	Instrument string
	Line       int // 0 when only the last line is known
	Record     string
	Err        error
}

func (e *MalformedRecordError) Error() string {
	where := "last line"
	if e.Line > 0 {
		where = fmt.Sprintf("line %d", e.Line)
	}
	msg := fmt.Sprintf("unexpected input in %s at %s: %q", e.Instrument, where, e.Record)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// NewMalformedRecord builds a MalformedRecordError from a raw row.
func NewMalformedRecord(instrument string, line int, fields []string, err error) *MalformedRecordError {
	return &MalformedRecordError{
		Instrument: instrument,
		Line:       line,
		Record:     strings.Join(fields, ","),
		Err:        err,
	}
}

// ErrorKind classifies err for metrics and the recorder.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, ErrEmptySeries):
		return "empty_series"
	case errors.Is(err, ErrInvalidWindow):
		return "invalid_window"
	default:
		return "io"
	}
}
