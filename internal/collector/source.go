package collector

import (
	"io"

	"StockWindow/internal/csvstore"
	"StockWindow/internal/extract"
	"StockWindow/internal/model"
)

// Records is an open record stream of one instrument.
type Records interface {
	extract.RecordIterator
	io.Closer
}

// Source defines where instruments and their records come from.
type Source interface {
	List() ([]model.Instrument, error)
	KnownRange(inst model.Instrument) (model.DateRange, error)
	Open(inst model.Instrument) (Records, error)
	Name() string
}

// FileSource reads instruments from <root>/<exchange>/<name>.csv.
type FileSource struct {
	Catalog *csvstore.Catalog
}

// NewFileSource creates a FileSource listing at most perExchange instruments per exchange.
func NewFileSource(root string, perExchange int) *FileSource {
	return &FileSource{Catalog: csvstore.NewCatalog(root, perExchange)}
}

func (s *FileSource) Name() string { return "csv" }

func (s *FileSource) List() ([]model.Instrument, error) {
	return s.Catalog.List()
}

func (s *FileSource) KnownRange(inst model.Instrument) (model.DateRange, error) {
	return csvstore.ProbeRange(inst.Path, inst.Name)
}

func (s *FileSource) Open(inst model.Instrument) (Records, error) {
	return csvstore.Open(inst.Path, inst.Name)
}
