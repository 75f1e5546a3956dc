package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry is the window chosen for one instrument.
type Entry struct {
	Start     string `json:"start"` // DD-MM-YYYY
	End       string `json:"end"`   // DD-MM-YYYY, before prediction
	WindowLen int    `json:"window_len"`
}

// State is the persisted manifest of a run.
type State struct {
	Windows   map[string]Entry `json:"windows"` // keyed by exchange/name
	UpdatedAt time.Time        `json:"updated_at"`
}

// LoadState reads the manifest from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Windows: map[string]Entry{}}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Windows == nil {
		state.Windows = map[string]Entry{}
	}
	return &state, nil
}

// SaveState writes the manifest to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}
