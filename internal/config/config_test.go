package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 0, cfg.Rounds)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, uint64(100000), cfg.NodeBudget)
	assert.Equal(t, 100, cfg.SaveEvery)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint64(100000), cfg.QueryBudget)
	assert.Equal(t, ":8007", cfg.ListenAddr)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kalah.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"data_dir: /tmp/knowledge\nworkers: 3\nnode_budget: 5000\nsave_interval: 30s\n"), 0644))
	t.Setenv("KALAH_NODE_BUDGET", "7000")
	t.Setenv("KALAH_ROUNDS", "12")
	t.Setenv("KALAH_LISTEN_ADDR", "127.0.0.1:9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/knowledge", cfg.DataDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, uint64(7000), cfg.NodeBudget)
	assert.Equal(t, 12, cfg.Rounds)
	assert.Equal(t, 30*time.Second, cfg.SaveInterval)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsZeroBudget(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KALAH_NODE_BUDGET", "0")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsZeroQueryBudget(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KALAH_QUERY_BUDGET", "0")
	_, err := Load("")
	assert.ErrorContains(t, err, "query_budget")
}
