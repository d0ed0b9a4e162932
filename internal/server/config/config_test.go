package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse("inkpage", nil, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
}

func TestParse_EnvAndFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "env overrides defaults",
			env: map[string]string{
				"INKPAGE_ADDR":          "127.0.0.1:9000",
				"INKPAGE_STORE":         "bolt",
				"INKPAGE_FADE_INTERVAL": "30s",
				"INKPAGE_FADE_DELTA":    "0.2",
				"INKPAGE_CACHE_SIZE":    "0",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
				assert.Equal(t, StoreBolt, cfg.Store)
				assert.Equal(t, 30*time.Second, cfg.FadeInterval)
				assert.InDelta(t, 0.2, cfg.FadeDelta, 1e-9)
				assert.Equal(t, 0, cfg.CacheSize)
			},
		},
		{
			name: "flags override env",
			args: []string{"-addr", ":7000", "-log-format", "json", "-poll-timeout", "2s"},
			env:  map[string]string{"INKPAGE_ADDR": ":9000", "INKPAGE_LOG_FORMAT": "text"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ":7000", cfg.Addr)
				assert.Equal(t, LogFormatJSON, cfg.LogFormat)
				assert.Equal(t, 2*time.Second, cfg.PollTimeout)
			},
		},
		{
			name: "version skips validation",
			args: []string{"-version", "-store", "nope"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.ShowVersion)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse("inkpage", tt.args, envMap(tt.env))
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "bad env duration", env: map[string]string{"INKPAGE_IDLE_TTL": "forever"}},
		{name: "bad env int", env: map[string]string{"INKPAGE_RATE_LIMIT": "many"}},
		{name: "bad env float", env: map[string]string{"INKPAGE_FADE_CUTOFF": "half"}},
		{name: "unknown store", args: []string{"-store", "redis"}},
		{name: "unknown log level", args: []string{"-log-level", "loud"}},
		{name: "unknown log format", args: []string{"-log-format", "xml"}},
		{name: "negative cache", args: []string{"-cache-size", "-1"}},
		{name: "zero poll timeout", args: []string{"-poll-timeout", "0s"}},
		{name: "fade without delta", args: []string{"-fade-interval", "1s", "-fade-delta", "0"}},
		{name: "rate limit without window", args: []string{"-rate-window", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("inkpage", tt.args, envMap(tt.env))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_UnknownFlag(t *testing.T) {
	_, err := Parse("inkpage", []string{"-nope"}, envMap(nil))
	assert.Error(t, err)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Store = "x"
	cfg.LogFormat = "y"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store "x"`)
	assert.Contains(t, err.Error(), `unknown log format "y"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
