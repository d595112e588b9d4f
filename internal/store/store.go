// Package store loads the JSON collections behind the API and keeps parsed
// copies in memory until they are explicitly invalidated.  A Store is an
// explicit object rather than a package-level cache so that every server
// (and every test) owns its own instance.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"

	"github.com/stih/tank-insights/internal/model"
)

// Collection file names inside the data directory.
const (
	PitchesFile    = "pitches.json"
	SharksFile     = "sharks.json"
	SeasonsFile    = "seasons.json"
	IndustriesFile = "industries.json"
	SyncLogFile    = "sync-log.json"
)

// DataFiles lists the collections produced by a refresh, in backup order.
var DataFiles = []string{PitchesFile, SharksFile, SeasonsFile, IndustriesFile}

// ErrDataUnavailable is returned when a backing file is missing or cannot be
// parsed.  Callers never receive partially parsed data alongside it.
var ErrDataUnavailable = errors.New("data unavailable")

// Store caches parsed collections keyed by file name.  Collections handed
// out by the store are shared between callers and must be treated as
// read-only.
type Store struct {
	dir string

	mu      sync.RWMutex
	entries map[string]any
	epoch   uint64            // bumped by Invalidate()
	gens    map[string]uint64 // bumped by Invalidate(name)

	group    singleflight.Group
	readFile func(string) ([]byte, error)
}

// New returns a Store reading collections from dir.
func New(dir string) *Store {
	return &Store{
		dir:      dir,
		entries:  make(map[string]any),
		gens:     make(map[string]uint64),
		readFile: os.ReadFile,
	}
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Invalidate drops the cached copies of the named collections, or of every
// collection when no name is given.  Loads already in flight when
// Invalidate runs still return to their callers but are not cached.
func (s *Store) Invalidate(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		s.entries = make(map[string]any)
		s.epoch++
		return
	}
	for _, n := range names {
		delete(s.entries, n)
		s.gens[n]++
	}
}

// Cached reports whether a collection is currently held in memory.
func (s *Store) Cached(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[name]
	return ok
}

// Pitches returns the normalised pitch collection.
func (s *Store) Pitches() ([]model.Pitch, error) {
	return load(s, PitchesFile, func(raw []byte) ([]model.Pitch, error) {
		var out []model.Pitch
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return NormalizePitches(out), nil
	})
}

// Seasons returns the season collection.
func (s *Store) Seasons() ([]model.Season, error) {
	return load(s, SeasonsFile, decodeArray[model.Season])
}

// Investors returns the investor (shark) collection.
func (s *Store) Investors() ([]model.Investor, error) {
	return load(s, SharksFile, decodeArray[model.Investor])
}

// Industries returns the precomputed industry rollups.
func (s *Store) Industries() ([]model.Industry, error) {
	return load(s, IndustriesFile, decodeArray[model.Industry])
}

// Count loads a data file and returns its record count.  Unknown names fail
// with ErrDataUnavailable.
func (s *Store) Count(name string) (int, error) {
	switch name {
	case PitchesFile:
		v, err := s.Pitches()
		return len(v), err
	case SharksFile:
		v, err := s.Investors()
		return len(v), err
	case SeasonsFile:
		v, err := s.Seasons()
		return len(v), err
	case IndustriesFile:
		v, err := s.Industries()
		return len(v), err
	}
	return 0, eris.Wrapf(ErrDataUnavailable, "unknown collection %q", name)
}

func decodeArray[T any](raw []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// load returns the cached value for name or reads and decodes the file.
// Concurrent first loads of the same generation share one disk read.
func load[T any](s *Store, name string, decode func([]byte) (T, error)) (T, error) {
	s.mu.RLock()
	if v, ok := s.entries[name]; ok {
		s.mu.RUnlock()
		return v.(T), nil
	}
	epoch, gen := s.epoch, s.gens[name]
	s.mu.RUnlock()

	key := fmt.Sprintf("%s@%d.%d", name, epoch, gen)
	v, err, _ := s.group.Do(key, func() (any, error) {
		raw, err := s.readFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, eris.Wrapf(ErrDataUnavailable, "read %s: %v", name, err)
		}
		val, err := decode(raw)
		if err != nil {
			return nil, eris.Wrapf(ErrDataUnavailable, "parse %s: %v", name, err)
		}

		s.mu.Lock()
		if s.epoch == epoch && s.gens[name] == gen {
			s.entries[name] = val
		}
		s.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
