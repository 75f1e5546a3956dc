// Package manifest remembers the windows chosen by a run so a later run can
// extract exactly the same ones.
package manifest

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"StockWindow/internal/model"
)

var log = logrus.WithField("component", "manifest")

// Manager guards a manifest file.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager creates a Manager, loading existing state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	return &Manager{state: state, filePath: filePath}, nil
}

// Start returns the remembered start date of an instrument.
func (m *Manager) Start(key string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.state.Windows[key]
	if !ok {
		return time.Time{}, false
	}
	t, err := model.ParseDate(e.Start)
	if err != nil {
		log.WithError(err).WithField("instrument", key).Warn("ignoring manifest entry")
		return time.Time{}, false
	}
	return t, true
}

// Entries returns a copy of the remembered windows.
func (m *Manager) Entries() map[string]Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Entry, len(m.state.Windows))
	for k, v := range m.state.Windows {
		out[k] = v
	}
	return out
}

// Remember stores the windows of the successful results and saves the manifest.
func (m *Manager) Remember(results []*model.WindowResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range results {
		if r.Failed() {
			continue
		}
		m.state.Windows[r.Instrument.Key()] = Entry{
			Start:     model.FormatDate(r.Window.Range.Start),
			End:       model.FormatDate(r.Window.Range.End),
			WindowLen: r.Window.Len(),
		}
		n++
	}

	if err := SaveState(m.filePath, m.state); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	log.Infof("manifest %s: %d windows stored", m.filePath, n)
	return nil
}
