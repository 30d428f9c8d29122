package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freeeve/kalah/internal/config"
	"github.com/freeeve/kalah/internal/httpapi"
	"github.com/freeeve/kalah/internal/ingest"
	"github.com/freeeve/kalah/internal/learn"
	"github.com/freeeve/kalah/internal/logx"
	"github.com/freeeve/kalah/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (default ./kalah.yaml if present)")
		addr       = flag.String("addr", "", "listen address (overrides listen_addr)")
		learnToo   = flag.Bool("learn", false, "run learning rounds in the background while serving")
		queueSize  = flag.Int("queue-size", 10000, "max undecided query positions waiting for learning")
		ingestDir  = flag.String("ingest-dir", "", "Directory to watch for wins*/draws* key files (empty = disabled)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	runID := uuid.NewString()
	logger := logx.NewLogger(cfg.LogLevel).With().Str("run", runID).Logger()

	st, err := store.Open(store.Config{
		Dir:    cfg.DataDir,
		Logger: logger.With().Str("component", "store").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open knowledge store")
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Undecided queries seed later learning rounds.
	var pending *learn.StartQueue
	var enqueuer httpapi.Enqueuer
	if *learnToo {
		pending = learn.NewStartQueue(*queueSize)
		enqueuer = pending
	}

	srv := newServer(cfg, logger, st, enqueuer)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	// Learning shares the store, so queries see new facts as soon as a
	// round is merged.
	learnDone := make(chan struct{})
	if *learnToo {
		st.SetRunID(runID)
		st.StartAutosave(cfg.SaveInterval)
		coord := learn.New(learn.Config{
			Logger:     logger.With().Str("component", "learn").Logger(),
			Workers:    cfg.Workers,
			Rounds:     cfg.Rounds,
			NodeBudget: cfg.NodeBudget,
			SaveEvery:  cfg.SaveEvery,
			Starts:     pending,
		}, st)
		go func() {
			defer close(learnDone)
			if err := coord.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("learning stopped")
			}
		}()
	} else {
		close(learnDone)
	}

	// Start ingest worker if configured
	worker, err := ingest.NewWorker(ingest.Config{
		WatchDir: *ingestDir,
		Logger:   logger.With().Str("component", "ingest").Logger(),
	}, st)
	if err != nil {
		logger.Fatal().Err(err).Msg("create ingest worker")
	}
	if worker != nil {
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("ingest worker stopped")
			}
		}()
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}

	// The round in progress finishes and Run saves before returning.
	select {
	case <-learnDone:
	case <-shutdownCtx.Done():
		logger.Warn().Msg("learning did not finish in time, last snapshot kept")
	}

	logger.Info().Msg("shutdown complete")
}

func newServer(cfg config.Config, logger zerolog.Logger, st *store.Store, pending httpapi.Enqueuer) *http.Server {
	return &http.Server{
		Addr: cfg.ListenAddr,
		Handler: httpapi.NewRouter(httpapi.Config{
			Logger:  logger.With().Str("component", "http").Logger(),
			Store:   st,
			Budget:  cfg.QueryBudget,
			Pending: pending,
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
