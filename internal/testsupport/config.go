package testsupport

import (
	"path/filepath"
	"testing"

	"mediaorg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ActionLogDir = filepath.Join(base, "actionlogs")
	cfg.Paths.HistoryDB = filepath.Join(base, "history.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithOverwrite enables overwrite approval on planned conflicts.
func WithOverwrite() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Library.OverwriteExisting = true
	}
}

// WithPreserveOriginals switches execution to copy mode.
func WithPreserveOriginals() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Execution.PreserveOriginals = true
	}
}
