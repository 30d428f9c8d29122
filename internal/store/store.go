package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/freeeve/kalah/internal/codec"
)

// File names of the knowledge snapshot inside the store directory.
const (
	WinsFile     = "wins.u64"
	DrawsFile    = "draws.u64"
	ArchiveExt   = ".zst"
	metadataFile = "metadata.json"
)

// Config configures the Store.
type Config struct {
	Dir    string
	Logger zerolog.Logger
}

// Store holds the known wins and draws behind a single reader/writer lock.
// Searches read through a View; facts are added with Merge.
type Store struct {
	dir string
	log zerolog.Logger

	mu    sync.RWMutex
	wins  map[codec.Key]struct{}
	draws map[codec.Key]struct{}
	meta  Metadata

	// serializes Save calls (rounds and autosave)
	saveMu sync.Mutex

	autosaveStop chan struct{}
	autosaveDone chan struct{}
}

// Open creates the store directory if needed and loads the snapshot in it.
// Missing files start an empty knowledge base; unreadable ones are logged
// and treated the same way.
func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, err
	}

	s := &Store{
		dir:   cfg.Dir,
		log:   cfg.Logger,
		wins:  make(map[codec.Key]struct{}),
		draws: make(map[codec.Key]struct{}),
	}
	s.load(WinsFile, s.wins)
	s.load(DrawsFile, s.draws)

	for k := range s.draws {
		if _, ok := s.wins[k]; ok {
			s.log.Error().Stringer("key", k).Msg("key present in both wins and draws")
		}
	}

	meta, err := loadMetadata(s.metadataPath())
	if err != nil {
		s.log.Warn().Err(err).Msg("metadata unreadable, starting counters at zero")
	}
	s.meta = meta

	s.log.Info().
		Str("dir", s.dir).
		Int("wins", len(s.wins)).
		Int("draws", len(s.draws)).
		Uint64("rounds", s.meta.Rounds).
		Msg("opened knowledge store")
	return s, nil
}

// load fills set from name, or from name+".zst" when only the archive exists.
func (s *Store) load(name string, set map[codec.Key]struct{}) {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if _, zerr := os.Stat(path + ArchiveExt); zerr == nil {
			path += ArchiveExt
		}
	}

	keys, err := ReadKeysFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Info().Str("file", path).Msg("no knowledge file, cold start")
		return
	case errors.Is(err, ErrTruncated):
		s.log.Warn().Str("file", path).Int("keys", len(keys)).Msg("knowledge file ends mid-record, ignoring the tail")
	case err != nil:
		s.log.Warn().Err(err).Str("file", path).Msg("knowledge file unreadable, cold start")
		return
	}

	var invalid int
	for _, k := range keys {
		if !storable(k) {
			invalid++
			continue
		}
		set[k] = struct{}{}
	}
	if invalid > 0 {
		s.log.Warn().Str("file", path).Int("invalid", invalid).Msg("skipped malformed keys")
	}
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// View is a read-only snapshot of the store. The store's read lock is held
// from View until Release, so no Merge can happen in between. Lookups are
// safe from several goroutines at once.
type View struct {
	s    *Store
	once sync.Once
}

// View acquires the read lock. Callers must Release the view.
func (s *Store) View() *View {
	s.mu.RLock()
	return &View{s: s}
}

// IsWin reports whether the side to move in k has a forced win.
func (v *View) IsWin(k codec.Key) bool {
	_, ok := v.s.wins[k]
	return ok
}

// IsDraw reports whether k is a forced draw.
func (v *View) IsDraw(k codec.Key) bool {
	_, ok := v.s.draws[k]
	return ok
}

// Release drops the read lock. Extra calls are no-ops.
func (v *View) Release() {
	v.once.Do(v.s.mu.RUnlock)
}

// Stats is a point-in-time summary of the store.
type Stats struct {
	Wins       int
	Draws      int
	Rounds     uint64
	Facts      uint64
	Duplicates uint64
	Conflicts  uint64
}

// Stats returns current counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Wins:       len(s.wins),
		Draws:      len(s.draws),
		Rounds:     s.meta.Rounds,
		Facts:      s.meta.Facts,
		Duplicates: s.meta.Duplicates,
		Conflicts:  s.meta.Conflicts,
	}
}

// Wins returns the known wins in ascending key order.
func (s *Store) Wins() []codec.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.wins)
}

// Draws returns the known draws in ascending key order.
func (s *Store) Draws() []codec.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.draws)
}

// SetRunID records the id of the learning run writing to the store.
func (s *Store) SetRunID(id string) {
	s.mu.Lock()
	s.meta.RunID = id
	s.mu.Unlock()
}

func sortedKeys(set map[codec.Key]struct{}) []codec.Key {
	keys := lo.Keys(set)
	slices.Sort(keys)
	return keys
}

// Close stops autosave. The caller is responsible for a final Save.
func (s *Store) Close() error {
	s.StopAutosave()
	return nil
}

func (s *Store) metadataPath() string {
	return filepath.Join(s.dir, metadataFile)
}
