// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	ListenAddr string `env:"PINDROME_LISTEN_ADDR" envDefault:":8080"`
	DataDir    string `env:"PINDROME_DATA_DIR"    envDefault:"./data"`
	DBPath     string `env:"PINDROME_DB_PATH"`
	CacheDir   string `env:"PINDROME_CACHE_DIR"`

	MachinesURL string        `env:"PINDROME_MACHINES_URL" envDefault:"https://opdb.org/api/export"`
	GroupsURL   string        `env:"PINDROME_GROUPS_URL"   envDefault:"https://opdb.org/api/export/groups"`
	RefDataTTL  time.Duration `env:"PINDROME_REFDATA_TTL"  envDefault:"168h"`

	LogLevel string `env:"PINDROME_LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "pindrome.sqlite")
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(cfg.DataDir, "refcache")
	}
	return cfg, nil
}
