package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EXTRACTA_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/home/tester/.local/share/extracta/extracta.db", cfg.Database.Path)
	require.Equal(t, "1.0.0", cfg.Normalization.LogicVersion)
	require.False(t, cfg.Normalization.RefinePassThrough)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 10, cfg.Log.MaxSizeMB)
}

func TestSaveRoundTripAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("EXTRACTA_CONFIG", path)

	want := Config{
		Database:      DatabaseConfig{Path: "/data/x.db"},
		Mapping:       MappingConfig{Path: "/etc/extracta/mapping.yaml"},
		Normalization: NormalizationConfig{LogicVersion: "2.0.0", RefinePassThrough: true},
		Log:           LogConfig{Level: "debug", Format: "json", File: "/tmp/p.log", MaxSizeMB: 5},
		Metrics:       MetricsConfig{Textfile: "/tmp/extracta.prom"},
	}
	require.NoError(t, Save(want))
	_, err := os.Stat(path)
	require.NoError(t, err)

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, want, got)

	t.Setenv("EXTRACTA_DATABASE_PATH", "/override.db")
	got, err = Load()
	require.NoError(t, err)
	require.Equal(t, "/override.db", got.Database.Path)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database\npath = "), 0o644))
	t.Setenv("EXTRACTA_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}
