package sync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LastRun is the outcome of the most recent completed synchronization.
type LastRun struct {
	RunID    string    `json:"run_id"`
	At       time.Time `json:"at"`
	Parsed   int       `json:"parsed"`
	Inserted int       `json:"inserted"`
	Failed   int       `json:"failed"`
}

// State persists LastRun as JSON next to the database.
type State struct {
	path string
	mu   sync.RWMutex
	last *LastRun
}

func NewState(path string) *State {
	return &State{path: path}
}

func (s *State) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No state file yet, that's ok
		}
		return err
	}

	var last LastRun
	if err := json.Unmarshal(data, &last); err != nil {
		return err
	}
	s.last = &last
	return nil
}

func (s *State) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.last, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Last returns the recorded run, or nil when no sync has completed yet.
func (s *State) Last() *LastRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	last := *s.last
	return &last
}

func (s *State) Record(run LastRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &run
}
