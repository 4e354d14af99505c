package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Preset is a saved window command line.
type Preset struct {
	Name     string    `json:"name"`
	Line     string    `json:"line"`
	AddedAt  time.Time `json:"added_at"`
	LastUsed time.Time `json:"last_used,omitempty"`
	UseCount int64     `json:"use_count"`
}

// EnvPresets holds a JSON array of presets layered over the file, for
// containers that have no writable config dir. They are never saved.
const EnvPresets = "RELAY_PRESETS"

// ErrEnvPreset is returned when changing a preset that comes from
// RELAY_PRESETS.
var ErrEnvPreset = errors.New("preset is set by " + EnvPresets)

// Store manages named presets persisted to disk. Presets from the
// environment shadow file presets of the same name.
type Store struct {
	mu      sync.Mutex
	path    string
	dirty   bool
	env     []Preset
	Presets []Preset `json:"presets"`
}

// OpenPath loads the preset store at path. A missing file is an empty store.
func OpenPath(path string) (*Store, error) {
	s := &Store{path: path, Presets: []Preset{}}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading store: %w", err)
	default:
		if err := json.Unmarshal(data, &s.Presets); err != nil {
			return nil, fmt.Errorf("parsing store: %w", err)
		}
	}

	if raw := os.Getenv(EnvPresets); raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.env); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvPresets, err)
		}
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Save writes the file presets to disk. It does nothing when no file preset
// changed, so a store that only reads never touches the disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(s.Presets, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *Store) envIndex(name string) int {
	for i := range s.env {
		if s.env[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) fileIndex(name string) int {
	for i := range s.Presets {
		if s.Presets[i].Name == name {
			return i
		}
	}
	return -1
}

// Add creates a new preset. Returns error if name already exists.
// The caller validates line.
func (s *Store) Add(name, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.envIndex(name) >= 0 || s.fileIndex(name) >= 0 {
		return fmt.Errorf("preset %q already exists", name)
	}

	s.Presets = append(s.Presets, Preset{
		Name:    name,
		Line:    line,
		AddedAt: time.Now(),
	})
	s.dirty = true
	return nil
}

// Remove deletes a preset by name.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.envIndex(name) >= 0 {
		return fmt.Errorf("removing %q: %w", name, ErrEnvPreset)
	}
	i := s.fileIndex(name)
	if i < 0 {
		return fmt.Errorf("preset %q not found", name)
	}
	s.Presets = append(s.Presets[:i], s.Presets[i+1:]...)
	s.dirty = true
	return nil
}

// Get returns a copy of the preset called name.
func (s *Store) Get(name string) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.envIndex(name); i >= 0 {
		return s.env[i], nil
	}
	if i := s.fileIndex(name); i >= 0 {
		return s.Presets[i], nil
	}
	return Preset{}, fmt.Errorf("preset %q not found", name)
}

// List returns all presets: file presets in order, each replaced by the
// environment preset of the same name, then the environment-only ones.
func (s *Store) List() []Preset {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Preset, 0, len(s.Presets)+len(s.env))
	for _, p := range s.Presets {
		if i := s.envIndex(p.Name); i >= 0 {
			p = s.env[i]
		}
		out = append(out, p)
	}
	for _, p := range s.env {
		if s.fileIndex(p.Name) < 0 {
			out = append(out, p)
		}
	}
	return out
}

// RecordUsage updates last-used timestamp and increments use count. Usage
// of an environment preset is kept in memory only.
func (s *Store) RecordUsage(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p *Preset
	if i := s.envIndex(name); i >= 0 {
		p = &s.env[i]
	} else if i := s.fileIndex(name); i >= 0 {
		p = &s.Presets[i]
		s.dirty = true
	} else {
		return fmt.Errorf("preset %q not found", name)
	}
	p.LastUsed = time.Now()
	p.UseCount++
	return nil
}

// Len returns the number of visible presets.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.Presets)
	for _, p := range s.env {
		if s.fileIndex(p.Name) < 0 {
			n++
		}
	}
	return n
}

// Update replaces the command line of an existing preset.
func (s *Store) Update(name, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.envIndex(name) >= 0 {
		return fmt.Errorf("updating %q: %w", name, ErrEnvPreset)
	}
	i := s.fileIndex(name)
	if i < 0 {
		return fmt.Errorf("preset %q not found", name)
	}
	s.Presets[i].Line = line
	s.dirty = true
	return nil
}
