package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/freeeve/kalah/internal/config"
	"github.com/freeeve/kalah/internal/logx"
	"github.com/freeeve/kalah/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (default ./kalah.yaml if present)")
		dataDir    = flag.String("data", "", "Knowledge directory (overrides data_dir)")
		outputDir  = flag.String("output", "./export", "Directory for the .zst archives")
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

	fmt.Printf("Opening knowledge store: %s\n", cfg.DataDir)
	st, err := store.Open(store.Config{Dir: cfg.DataDir, Logger: logx.NewLogger(cfg.LogLevel)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open knowledge store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	stats := st.Stats()
	fmt.Printf("Store stats: %d wins, %d draws\n", stats.Wins, stats.Draws)

	if err := st.Export(*outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDone! Exported %d wins and %d draws to %s\n", stats.Wins, stats.Draws, *outputDir)
}
