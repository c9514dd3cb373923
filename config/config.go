package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration. Every field has a default so a
// missing config file is not an error.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Matchmaking MatchmakingConfig `toml:"matchmaking"`
	Battle      BattleConfig      `toml:"battle"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Logging     LoggingConfig     `toml:"logging"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr"`
	Port            string        `toml:"port"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type MatchmakingConfig struct {
	PairingInterval time.Duration `toml:"pairing_interval"`
	EloWindow       int           `toml:"elo_window"`
}

type BattleConfig struct {
	StartDelay   time.Duration `toml:"start_delay"`
	Duration     time.Duration `toml:"duration"`
	TickInterval time.Duration `toml:"tick_interval"`
	PurgeGrace   time.Duration `toml:"purge_grace"`
	ChakraRegen  int           `toml:"chakra_regen"`
	ComboDecay   float64       `toml:"combo_decay"`
	ComboGain    float64       `toml:"combo_gain"`
	ComboMax     float64       `toml:"combo_max"`
}

type CatalogConfig struct {
	// Path to a jutsu definition file. Empty means the embedded catalog.
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// Load reads the TOML file at path on top of the defaults. A missing file
// yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "localhost",
			Port:            "9090",
			ShutdownTimeout: 10 * time.Second,
		},
		Matchmaking: MatchmakingConfig{
			PairingInterval: 2 * time.Second,
			EloWindow:       50,
		},
		Battle: BattleConfig{
			StartDelay:   3 * time.Second,
			Duration:     180 * time.Second,
			TickInterval: time.Second,
			PurgeGrace:   10 * time.Second,
			ChakraRegen:  10,
			ComboDecay:   0.05,
			ComboGain:    0.2,
			ComboMax:     3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
