// Package extract reads the records of one instrument into a dense window.
package extract

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"StockWindow/internal/model"
)

var log = logrus.WithField("component", "extract")

// RecordIterator yields the raw records of one instrument in ascending date
// order. Next returns io.EOF once exhausted.
type RecordIterator interface {
	Next() (model.RawRecord, error)
}

// SliceIterator iterates over in-memory records.
type SliceIterator struct {
	records []model.RawRecord
	pos     int
}

// NewSliceIterator creates an iterator over records without copying them.
func NewSliceIterator(records []model.RawRecord) *SliceIterator {
	return &SliceIterator{records: records}
}

func (it *SliceIterator) Next() (model.RawRecord, error) {
	if it.pos >= len(it.records) {
		return model.RawRecord{}, io.EOF
	}
	rec := it.records[it.pos]
	it.pos++
	return rec, nil
}

// Decode parses the date and value of a raw record.
func Decode(instrument string, rec model.RawRecord) (model.DatedValue, error) {
	fields := []string{rec.Instrument, rec.Date, rec.Value}
	if strings.TrimSpace(rec.Date) == "" || strings.TrimSpace(rec.Value) == "" {
		return model.DatedValue{}, model.NewMalformedRecord(instrument, rec.Line, fields, errors.New("missing field"))
	}
	d, err := model.ParseDate(rec.Date)
	if err != nil {
		return model.DatedValue{}, model.NewMalformedRecord(instrument, rec.Line, fields, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec.Value), 64)
	if err != nil {
		return model.DatedValue{}, model.NewMalformedRecord(instrument, rec.Line, fields, err)
	}
	return model.DatedValue{Date: d, Value: v}, nil
}

// Extract collects the values dated inside interval.
//
// Records before interval.Start are skipped and the scan stops at the first
// record after interval.End. Any record that fails to decode aborts the
// extraction. Fewer values than interval.Days() means the data has a gap.
func Extract(instrument string, records RecordIterator, interval model.DateRange) (model.TimeSeries, error) {
	need := interval.Days()
	values := make([]float64, 0, need)

	for {
		rec, err := records.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.TimeSeries{}, fmt.Errorf("read %s: %w", instrument, err)
		}

		dv, err := Decode(instrument, rec)
		if err != nil {
			return model.TimeSeries{}, err
		}
		if dv.Date.After(interval.End) {
			break
		}
		if !dv.Date.Before(interval.Start) {
			values = append(values, dv.Value)
		}
	}

	if len(values) < need {
		return model.TimeSeries{}, &model.InsufficientDataError{
			Instrument: instrument,
			Need:       need,
			Have:       len(values),
		}
	}

	if len(values) > need {
		log.WithField("instrument", instrument).Warnf(
			"window %s holds %d values for %d days, duplicate dates shift later values past %s",
			interval, len(values), need, model.FormatDate(interval.End))
	}
	return model.TimeSeries{Range: interval, Values: values}, nil
}
