// Package state remembers the operator's last device and control choice
// between runs.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	stateFileName = "state.yaml"
	appDirName    = "crossfader"
)

// Saved is the on-disk record. Zero values mean "not saved".
type Saved struct {
	Device      string    `yaml:"device,omitempty"`
	Control     *int      `yaml:"control,omitempty"`
	LastUpdated time.Time `yaml:"last_updated,omitempty"`
}

// Store reads and writes Saved in a single YAML file.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a Store in dir, or in the default XDG state path when
// dir is empty. The directory is created on the first save.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &Store{dir: dir}
}

// Path returns the full path to the state file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, stateFileName)
}

// Load reads the saved record. A missing file yields an empty record.
func (s *Store) Load() (Saved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Saved, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Saved{}, nil
		}
		return Saved{}, fmt.Errorf("reading state: %w", err)
	}

	var saved Saved
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return Saved{}, fmt.Errorf("parsing state: %w", err)
	}
	return saved, nil
}

// LoadDevice returns the saved device name, if any.
func (s *Store) LoadDevice() (string, bool, error) {
	saved, err := s.Load()
	if err != nil || saved.Device == "" {
		return "", false, err
	}
	return saved.Device, true, nil
}

// LoadControl returns the saved control id, if any.
func (s *Store) LoadControl() (int, bool, error) {
	saved, err := s.Load()
	if err != nil || saved.Control == nil {
		return 0, false, err
	}
	return *saved.Control, true, nil
}

// SaveDevice records the selected device, keeping the saved control.
func (s *Store) SaveDevice(name string) error {
	return s.update(func(saved *Saved) { saved.Device = name })
}

// SaveControl records the learned control, keeping the saved device.
func (s *Store) SaveControl(control int) error {
	return s.update(func(saved *Saved) { saved.Control = &control })
}

func (s *Store) update(fn func(*Saved)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		// An unreadable file is replaced rather than blocking the save.
		saved = Saved{}
	}
	fn(&saved)
	saved.LastUpdated = time.Now().UTC()
	return s.save(saved)
}

// save writes atomically via a temp file and rename.
func (s *Store) save(saved Saved) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	data, err := yaml.Marshal(saved)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming state file: %w", err)
	}
	committed = true

	return nil
}

// defaultStateDir returns ~/.local/state/crossfader, respecting
// XDG_STATE_HOME if set.
func defaultStateDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
