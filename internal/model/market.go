package model

import "time"

// Instrument is a single named time series on disk, e.g. one stock of one exchange.
type Instrument struct {
	Exchange string
	Name     string
	Path     string
	Known    DateRange // extent of the records in Path, probed once at load time
}

// Key returns a unique key for this instrument: "exchange/name".
func (i *Instrument) Key() string {
	return i.Exchange + "/" + i.Name
}

// RawRecord is one undecoded row of an instrument file.
type RawRecord struct {
	Line       int // 1-based line number in the source
	Instrument string
	Date       string
	Value      string
}

// DatedValue is a decoded record.
type DatedValue struct {
	Date  time.Time
	Value float64
}
