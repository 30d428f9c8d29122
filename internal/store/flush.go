package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/freeeve/kalah/internal/codec"
)

// Save writes wins.u64, draws.u64 and metadata.json, replacing the previous
// snapshot. Keys are written in ascending order.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	start := time.Now()
	s.mu.RLock()
	wins := sortedKeys(s.wins)
	draws := sortedKeys(s.draws)
	meta := s.meta
	s.mu.RUnlock()

	if err := WriteKeysFile(filepath.Join(s.dir, WinsFile), wins); err != nil {
		return err
	}
	if err := WriteKeysFile(filepath.Join(s.dir, DrawsFile), draws); err != nil {
		return err
	}

	meta.Wins = len(wins)
	meta.Draws = len(draws)
	meta.SavedAt = time.Now().UTC()
	if err := saveMetadata(s.metadataPath(), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	s.log.Info().
		Int("wins", len(wins)).
		Int("draws", len(draws)).
		Uint64("rounds", meta.Rounds).
		Dur("elapsed", time.Since(start)).
		Msg("knowledge saved")
	return nil
}

// Export writes zstd compressed copies of both key files into dir.
func (s *Store) Export(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	files := map[string][]codec.Key{
		WinsFile:  s.Wins(),
		DrawsFile: s.Draws(),
	}
	for _, name := range []string{WinsFile, DrawsFile} {
		keys := files[name]
		if err := WriteKeysFile(filepath.Join(dir, name+ArchiveExt), keys); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
		s.log.Info().Str("file", name+ArchiveExt).Int("keys", len(keys)).Msg("exported")
	}
	return nil
}
