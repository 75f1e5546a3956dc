// Package csvstore discovers instrument files on disk, reads their records
// and writes extended series back out as CSV.
package csvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"StockWindow/internal/model"
)

var log = logrus.WithField("component", "csvstore")

// Catalog lists instruments stored as <Root>/<exchange>/<name>.csv.
type Catalog struct {
	Root        string
	PerExchange int // max instruments per exchange, <= 0 for all
}

// NewCatalog creates a Catalog rooted at root.
func NewCatalog(root string, perExchange int) *Catalog {
	return &Catalog{Root: root, PerExchange: perExchange}
}

// Exchanges returns the exchange directory names, sorted.
func (c *Catalog) Exchanges() ([]string, error) {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// List returns the instruments of every exchange, sorted by exchange then
// name. Known ranges are left empty; see ProbeRange.
func (c *Catalog) List() ([]model.Instrument, error) {
	exchanges, err := c.Exchanges()
	if err != nil {
		return nil, err
	}

	var out []model.Instrument
	for _, exch := range exchanges {
		dir := filepath.Join(c.Root, exch)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read exchange %s: %w", exch, err)
		}

		taken := 0
		for _, e := range entries {
			if c.PerExchange > 0 && taken >= c.PerExchange {
				break
			}
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				continue
			}
			taken++
			out = append(out, model.Instrument{
				Exchange: exch,
				Name:     strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
				Path:     filepath.Join(dir, e.Name()),
			})
		}
		log.Debugf("exchange %s: %d instruments", exch, taken)
	}
	return out, nil
}
