package main

import (
	"errors"
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
		inputPath  = flag.String("input", "", "Key file to merge (.u64 or .u64.zst)")
		kindName   = flag.String("kind", "wins", "Set the keys belong to: wins or draws")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: import --input <file.u64[.zst]> [--kind wins|draws] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var kind store.Kind
	switch *kindName {
	case "wins":
		kind = store.KindWins
	case "draws":
		kind = store.KindDraws
	default:
		fmt.Fprintf(os.Stderr, "unknown kind %q, expected wins or draws\n", *kindName)
		os.Exit(1)
	}

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

	keys, err := store.ReadKeysFile(*inputPath)
	if errors.Is(err, store.ErrTruncated) {
		fmt.Fprintf(os.Stderr, "warning: %s ends mid-record, importing the %d complete keys\n", *inputPath, len(keys))
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *inputPath, err)
		os.Exit(1)
	}

	fmt.Printf("Importing %d %s from %s...\n", len(keys), kind, *inputPath)
	res := st.Import(kind, keys)

	fmt.Println("Saving...")
	if err := st.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "save: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDone! Imported %d (duplicates %d, conflicts %d, malformed %d)\n",
		res.Wins+res.Draws, res.Duplicates, res.Conflicts, res.Skipped)
}
