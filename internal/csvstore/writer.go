package csvstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"StockWindow/internal/model"
)

// Writer writes extended series to <Root>/<exchange>/<name>_out.csv.
type Writer struct {
	Root string
}

// NewWriter creates a Writer rooted at root.
func NewWriter(root string) *Writer {
	return &Writer{Root: root}
}

// Path returns the output file of an instrument.
func (w *Writer) Path(inst model.Instrument) string {
	return filepath.Join(w.Root, inst.Exchange, inst.Name+"_out.csv")
}

// Write writes one row per day of series, starting at series.Range.Start.
// Values keep their full precision.
func (w *Writer) Write(inst model.Instrument, series model.TimeSeries) (path string, err error) {
	if series.Len() == 0 {
		return "", fmt.Errorf("no values to write for %s", inst.Key())
	}

	dir := filepath.Join(w.Root, inst.Exchange)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	path = w.Path(inst)
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to open file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close file")
		}
	}()

	cw := csv.NewWriter(file)
	for _, p := range series.Points() {
		row := []string{
			inst.Name,
			model.FormatDate(p.Date),
			FormatValue(p.Value),
		}
		if err := cw.Write(row); err != nil {
			return "", errors.Wrap(err, "writing record to file")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", errors.Wrap(err, "flushing records")
	}

	return path, nil
}

// FormatValue renders v as the shortest decimal that parses back to v.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
