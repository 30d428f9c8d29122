package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/freeeve/kalah/internal/config"
	"github.com/freeeve/kalah/internal/logx"
	"github.com/freeeve/kalah/internal/store"
	"github.com/freeeve/kalah/internal/verify"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (default ./kalah.yaml if present)")
		dataDir    = flag.String("data", "", "Knowledge directory (overrides data_dir)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	logger := logx.NewLogger(cfg.LogLevel)

	st, err := store.Open(store.Config{Dir: cfg.DataDir, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open knowledge store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := verify.Run(ctx, verify.Config{
		Logger:  logger,
		Workers: cfg.Workers,
		Budget:  cfg.VerifyBudget,
	}, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Checked %d keys in %s: %d wrong, %d undecided, %d malformed\n",
		report.Checked, report.Elapsed, len(report.Mismatches), report.Exhausted, report.Malformed)
	for _, m := range report.Mismatches {
		fmt.Printf("  %s %s: search says %s\n", m.Kind, m.Key, m.Got)
	}
	if !report.OK() {
		os.Exit(2)
	}
}
