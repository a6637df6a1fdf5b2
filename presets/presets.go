// Package presets implements the preset store: an on-disk JSON object
// mapping name -> motion.Profile, written with temp-file-then-rename
// atomic replace semantics under an advisory in-process lock
// (preset writes are rare and small, so a simple mutex is plenty).
// Storage uses only the standard library (encoding/json, os); errors
// are wrapped with github.com/pkg/errors — see DESIGN.md for why.
package presets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/BiologIC-Colin/CameraSlider/motion"
)

// Store is a JSON-file-backed preset store shared by the controller.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore opens the preset store at path, creating it empty on first
// run.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeAll(map[string]*motion.Profile{}); err != nil {
			return nil, errors.Wrap(err, "creating preset store")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "stat preset store")
	}
	return s, nil
}

func (s *Store) readAll() (map[string]*motion.Profile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "reading preset store")
	}
	all := map[string]*motion.Profile{}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, errors.Wrap(err, "decoding preset store")
	}
	return all, nil
}

// writeAll replaces the store's contents with an atomic
// temp-file-then-rename so a crash mid-write never leaves a truncated
// or half-written preset file behind.
func (s *Store) writeAll(all map[string]*motion.Profile) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding preset store")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".presets-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp preset file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing temp preset file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing temp preset file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "renaming temp preset file")
	}
	return nil
}

// List returns every preset currently stored, keyed by name.
func (s *Store) List() (map[string]*motion.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Save writes (or overwrites) the named preset.
func (s *Store) Save(name string, p *motion.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	all[name] = p
	return s.writeAll(all)
}

// Delete removes the named preset, if present. Deleting an unknown
// name is a no-op, not an error.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	delete(all, name)
	return s.writeAll(all)
}
