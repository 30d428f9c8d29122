// Package config loads run settings from defaults, an optional config file
// and KALAH_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tunables shared by the command line tools.
type Config struct {
	DataDir      string        `mapstructure:"data_dir"`
	Rounds       int           `mapstructure:"rounds"`
	Workers      int           `mapstructure:"workers"`
	NodeBudget   uint64        `mapstructure:"node_budget"`
	SaveEvery    int           `mapstructure:"save_every"`
	SaveInterval time.Duration `mapstructure:"save_interval"`
	VerifyBudget uint64        `mapstructure:"verify_budget"`
	QueryBudget  uint64        `mapstructure:"query_budget"`
	ListenAddr   string        `mapstructure:"listen_addr"`
	LogLevel     string        `mapstructure:"log_level"`
}

const envPrefix = "KALAH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")
	v.SetDefault("rounds", 0)
	v.SetDefault("workers", 0)
	v.SetDefault("node_budget", 100000)
	v.SetDefault("save_every", 100)
	v.SetDefault("save_interval", time.Duration(0))
	v.SetDefault("verify_budget", 0)
	v.SetDefault("query_budget", 100000)
	v.SetDefault("listen_addr", ":8007")
	v.SetDefault("log_level", "info")
}

// Load reads the configuration. An explicit path must exist; without one a
// kalah.{yaml,json,toml} in the working directory is used when present.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("kalah")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.NodeBudget == 0 {
		return Config{}, errors.New("node_budget must be positive")
	}
	if cfg.QueryBudget == 0 {
		return Config{}, errors.New("query_budget must be positive")
	}
	if cfg.SaveEvery < 0 {
		return Config{}, errors.New("save_every must not be negative")
	}
	return cfg, nil
}
