package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// State holds what the client restores on the next start.
type State struct {
	LastAdapter string     `json:"lastAdapter,omitempty"`
	Input       InputState `json:"input,omitempty"`
}

// InputState is the last content of the input pane.
type InputState struct {
	Mode string `json:"mode,omitempty"` // "text" or "file"
	Text string `json:"text,omitempty"`
	Path string `json:"path,omitempty"`
}

var (
	current *State
	mu      sync.RWMutex
	path    string
)

// Init loads state from the default location.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitWithDir(filepath.Join(home, ".config", "modeldeck"))
}

// InitWithDir loads state from a specified directory.
// This is primarily for testing to avoid reading real user state.
func InitWithDir(dir string) error {
	mu.Lock()
	path = filepath.Join(dir, "state.json")
	mu.Unlock()
	return Load()
}

// Load reads state from disk.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	current = &State{Input: InputState{Mode: "text"}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, current)
}

// Save writes state to disk.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil || path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetLastAdapter returns the adapter selected when the client last exited.
func GetLastAdapter() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.LastAdapter
}

// SetLastAdapter saves the selected adapter.
func SetLastAdapter(name string) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.LastAdapter = name
	mu.Unlock()
	return Save()
}

// GetInput returns the saved input pane content.
func GetInput() InputState {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return InputState{Mode: "text"}
	}
	return current.Input
}

// SetInput saves the input pane content.
func SetInput(in InputState) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.Input = in
	mu.Unlock()
	return Save()
}
