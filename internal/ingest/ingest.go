// Package ingest watches a directory for key archives produced by other
// learning runs and merges them into the local knowledge store.
package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/kalah/internal/store"
)

// Config configures the ingest worker.
type Config struct {
	WatchDir     string         // Directory to watch for key archives
	ProcessedDir string         // Directory to move processed files to
	PollInterval time.Duration  // How often to check for new files
	Readers      int            // Files read in parallel, default 4
	Logger       zerolog.Logger // Logger
}

// Worker watches a folder and imports wins*/draws* key files.
type Worker struct {
	cfg Config
	st  *store.Store
	log zerolog.Logger
}

// NewWorker creates a new ingest worker. It returns nil when WatchDir is
// empty.
func NewWorker(cfg Config, st *store.Store) (*Worker, error) {
	if cfg.WatchDir == "" {
		return nil, nil // Disabled
	}
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = filepath.Join(cfg.WatchDir, "processed")
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.Readers <= 0 {
		cfg.Readers = 4
	}

	// Ensure directories exist
	if err := os.MkdirAll(cfg.WatchDir, 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.ProcessedDir, 0755); err != nil {
		return nil, err
	}

	return &Worker{
		cfg: cfg,
		st:  st,
		log: cfg.Logger,
	}, nil
}

// Run polls the watch directory until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().
		Str("watch_dir", w.cfg.WatchDir).
		Str("processed_dir", w.cfg.ProcessedDir).
		Dur("poll", w.cfg.PollInterval).
		Msg("ingest worker started")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessNewFiles(ctx); err != nil {
				w.log.Warn().Err(err).Msg("process files failed")
			}
		}
	}
}

// kindOf maps wins*.u64[.zst] and draws*.u64[.zst] to their set.
func kindOf(name string) (store.Kind, bool) {
	base := strings.TrimSuffix(name, store.ArchiveExt)
	if filepath.Ext(base) != ".u64" {
		return 0, false
	}
	switch {
	case strings.HasPrefix(base, "wins"):
		return store.KindWins, true
	case strings.HasPrefix(base, "draws"):
		return store.KindDraws, true
	default:
		return 0, false
	}
}

// ProcessNewFiles imports every key file in the watch directory, moves the
// imported ones to ProcessedDir and saves the store. It returns the number
// of files imported.
func (w *Worker) ProcessNewFiles(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(w.cfg.WatchDir)
	if err != nil {
		return 0, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := kindOf(e.Name()); ok {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return 0, nil
	}

	// Sort by name to process in order
	sort.Strings(files)
	w.log.Info().Int("files", len(files)).Msg("found key files to import")

	// Files are read in parallel; Import serializes on the store lock.
	var (
		mu       sync.Mutex
		imported []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Readers)
	for _, name := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if err := w.importFile(name); err != nil {
				w.log.Error().Err(err).Str("file", name).Msg("ingest failed")
				return nil
			}
			mu.Lock()
			imported = append(imported, name)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Move to processed folder
	for _, name := range imported {
		src := filepath.Join(w.cfg.WatchDir, name)
		dst := filepath.Join(w.cfg.ProcessedDir, name)
		if err := os.Rename(src, dst); err != nil {
			w.log.Warn().Err(err).Str("file", name).Msg("move to processed failed")
		}
	}

	w.log.Info().Int("imported", len(imported)).Int("failed", len(files)-len(imported)).Msg("batch complete, saving...")
	if len(imported) > 0 {
		if err := w.st.Save(); err != nil {
			return len(imported), err
		}
	}
	return len(imported), ctx.Err()
}

func (w *Worker) importFile(name string) error {
	kind, _ := kindOf(name)
	path := filepath.Join(w.cfg.WatchDir, name)

	keys, err := store.ReadKeysFile(path)
	if errors.Is(err, store.ErrTruncated) {
		w.log.Warn().Str("file", name).Int("keys", len(keys)).Msg("file ends mid-record, importing complete keys")
	} else if err != nil {
		return err
	}

	res := w.st.Import(kind, keys)
	w.log.Info().
		Str("file", name).
		Stringer("kind", kind).
		Int("keys", len(keys)).
		Int("added", res.Wins+res.Draws).
		Int("duplicates", res.Duplicates).
		Int("conflicts", res.Conflicts).
		Int("malformed", res.Skipped).
		Msg("file imported")
	return nil
}

