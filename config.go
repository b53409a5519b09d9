package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment first; flags override it.
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	SheetURL     string        `env:"WHEEL_SHEET_URL"`
	GameFile     string        `env:"WHEEL_GAME_FILE" envDefault:"wheel_file.txt"`
	DBPath       string        `env:"WHEEL_DB_PATH" envDefault:"data/wheel.sqlite"`
	FrameDelay   time.Duration `env:"WHEEL_FRAME_DELAY" envDefault:"50ms"`
	FetchTimeout time.Duration `env:"WHEEL_FETCH_TIMEOUT" envDefault:"15s"`
	// Seed fixes every round's spinner. Zero draws a fresh seed per round.
	Seed      uint64 `env:"WHEEL_SEED"`
	Dev       bool   `env:"DEV"`
	Tailscale bool   `env:"WHEEL_TAILSCALE"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port for serve")
	fs.StringVar(&cfg.SheetURL, "sheet-url", cfg.SheetURL, "published spreadsheet CSV export URL")
	fs.StringVar(&cfg.GameFile, "game-file", cfg.GameFile, "local game file")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite catalogue cache path, empty to disable")
	fs.DurationVar(&cfg.FrameDelay, "frame-delay", cfg.FrameDelay, "pause between spin frames")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "spreadsheet download timeout")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "replay rounds with this seed")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "serve the instructions page from disk")
	fs.BoolVar(&cfg.Tailscale, "ts", cfg.Tailscale, "serve over Tailscale")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
