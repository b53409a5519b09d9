package main

import (
	"flag"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "WHEEL_SHEET_URL", "WHEEL_GAME_FILE", "WHEEL_DB_PATH", "WHEEL_FRAME_DELAY", "WHEEL_FETCH_TIMEOUT", "WHEEL_SEED", "DEV", "WHEEL_TAILSCALE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := ParseConfig(newTestFlagSet(), nil)
	require.NoError(t, err, "ParseConfig")
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "wheel_file.txt", cfg.GameFile)
	assert.Equal(t, "data/wheel.sqlite", cfg.DBPath)
	assert.Equal(t, 50*time.Millisecond, cfg.FrameDelay)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Zero(t, cfg.Seed)
	assert.False(t, cfg.Dev)
	assert.False(t, cfg.Tailscale)
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WHEEL_SHEET_URL", "https://example.test/export.csv")
	t.Setenv("WHEEL_SEED", "42")
	t.Setenv("WHEEL_FRAME_DELAY", "10ms")

	cfg, err := ParseConfig(newTestFlagSet(), []string{"-port", "9100", "-seed", "7"})
	require.NoError(t, err, "ParseConfig")
	assert.Equal(t, "9100", cfg.Port, "flag should override env")
	assert.Equal(t, uint64(7), cfg.Seed, "flag should override env")
	assert.Equal(t, "https://example.test/export.csv", cfg.SheetURL)
	assert.Equal(t, 10*time.Millisecond, cfg.FrameDelay)
}

func TestParseConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("WHEEL_FRAME_DELAY", "soon")
	_, err := ParseConfig(newTestFlagSet(), nil)
	require.Error(t, err)
}
