package csvstore

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"StockWindow/internal/model"
)

// RecordReader streams the rows of one instrument file.
type RecordReader struct {
	name string
	file *os.File
	csv  *csv.Reader
}

// Open opens an instrument file for reading.
func Open(path, name string) (*RecordReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	r := csv.NewReader(f)
	// short rows reach the extractor and are reported as malformed there
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	return &RecordReader{name: name, file: f, csv: r}, nil
}

// Next returns the next row. It returns io.EOF at the end of the file.
func (r *RecordReader) Next() (model.RawRecord, error) {
	fields, err := r.csv.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return model.RawRecord{}, model.NewMalformedRecord(r.name, perr.Line, nil, perr.Err)
		}
		return model.RawRecord{}, err
	}
	line, _ := r.csv.FieldPos(0)
	return toRawRecord(line, fields), nil
}

// Close closes the underlying file.
func (r *RecordReader) Close() error {
	return r.file.Close()
}

func toRawRecord(line int, fields []string) model.RawRecord {
	rec := model.RawRecord{Line: line}
	if len(fields) > 0 {
		rec.Instrument = fields[0]
	}
	if len(fields) > 1 {
		rec.Date = fields[1]
	}
	if len(fields) > 2 {
		rec.Value = fields[2]
	}
	return rec
}

// ProbeRange returns the dates of the first and last rows of an instrument
// file. Only the first line and the tail of the file are read; the rows in
// between are assumed to be consecutive days.
func ProbeRange(path, name string) (model.DateRange, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	first, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return model.DateRange{}, fmt.Errorf("read %s: %w", name, err)
	}
	start, err := boundaryDate(name, 1, first)
	if err != nil {
		return model.DateRange{}, err
	}

	last, err := lastLine(f)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("read %s: %w", name, err)
	}
	end, err := boundaryDate(name, 0, last)
	if err != nil {
		return model.DateRange{}, err
	}

	r, err := model.NewDateRange(start, end)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%s: %w", name, err)
	}
	return r, nil
}

// boundaryDate parses the date column of a single CSV line.
func boundaryDate(name string, line int, text string) (time.Time, error) {
	fields, err := csv.NewReader(strings.NewReader(text)).Read()
	if err != nil && err != io.EOF {
		return time.Time{}, model.NewMalformedRecord(name, line, []string{strings.TrimSpace(text)}, err)
	}
	rec := toRawRecord(line, fields)
	d, err := model.ParseDate(rec.Date)
	if err != nil {
		return time.Time{}, model.NewMalformedRecord(name, line, fields, err)
	}
	return d, nil
}

// lastLine reads the final non-empty line of f by scanning backwards from the end.
func lastLine(f *os.File) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	const chunkSize = 512
	var buf []byte
	for pos := info.Size(); pos > 0; {
		n := int64(chunkSize)
		if pos < n {
			n = pos
		}
		pos -= n

		chunk := make([]byte, n)
		if _, err := f.ReadAt(chunk, pos); err != nil && err != io.EOF {
			return "", err
		}
		buf = append(chunk, buf...)

		trimmed := bytes.TrimRight(buf, "\r\n")
		if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
			return string(trimmed[i+1:]), nil
		}
	}
	return string(bytes.TrimRight(buf, "\r\n")), nil
}
