package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freeeve/kalah/internal/config"
	"github.com/freeeve/kalah/internal/learn"
	"github.com/freeeve/kalah/internal/logx"
	"github.com/freeeve/kalah/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ./kalah.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	logger := logx.NewLogger(cfg.LogLevel).With().Str("run", runID).Logger()
	logger.Info().
		Str("data_dir", cfg.DataDir).
		Int("workers", cfg.Workers).
		Int("rounds", cfg.Rounds).
		Uint64("node_budget", cfg.NodeBudget).
		Msg("starting learn")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(store.Config{Dir: cfg.DataDir, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("open knowledge store")
	}
	defer st.Close()
	st.SetRunID(runID)

	if cfg.SaveInterval > 0 {
		st.StartAutosave(cfg.SaveInterval)
	}

	if err := newCoordinator(cfg, logger, st).Run(ctx); err != nil {
		// Deferred calls do not run after Fatal.
		st.Close()
		logger.Fatal().Err(err).Msg("learning failed")
	}

	stats := st.Stats()
	logger.Info().
		Int("wins", stats.Wins).
		Int("draws", stats.Draws).
		Uint64("rounds", stats.Rounds).
		Uint64("conflicts", stats.Conflicts).
		Msg("done")
}

func newCoordinator(cfg config.Config, logger zerolog.Logger, st *store.Store) *learn.Coordinator {
	return learn.New(learn.Config{
		Logger:     logger,
		Workers:    cfg.Workers,
		Rounds:     cfg.Rounds,
		NodeBudget: cfg.NodeBudget,
		SaveEvery:  cfg.SaveEvery,
	}, st)
}
