package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LibraryDir   string `toml:"library_dir"`
	LogDir       string `toml:"log_dir"`
	ActionLogDir string `toml:"action_log_dir"`
	HistoryDB    string `toml:"history_db"`
}

// Library contains configuration for the media library structure.
type Library struct {
	MoviesDir         string `toml:"movies_dir"`
	TVDir             string `toml:"tv_dir"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
}

// Matching contains the tolerances and weights that drive confidence scoring.
// These are compatibility-sensitive values; tests assert exact outputs against
// them, so changes here are deliberate configuration changes rather than
// code edits.
type Matching struct {
	// ExactToleranceSeconds is the duration delta classified as an exact match.
	ExactToleranceSeconds int `toml:"exact_tolerance_seconds"`
	// CloseToleranceSeconds is the duration delta classified as a close match.
	CloseToleranceSeconds int `toml:"close_tolerance_seconds"`
	// NameWeight and DurationWeight blend the two confidence factors. They
	// must sum to 1.0.
	NameWeight     float64 `toml:"name_weight"`
	DurationWeight float64 `toml:"duration_weight"`
	// UnmatchedFloor is the confidence below which a file is reported as
	// unmatched instead of assigned.
	UnmatchedFloor float64 `toml:"unmatched_floor"`
	// ProbeWorkers bounds the parallel duration-probe workers.
	ProbeWorkers int `toml:"probe_workers"`
}

// Execution contains configuration for plan execution.
type Execution struct {
	// OnFailure selects the failure policy: "rollback" or "skip".
	OnFailure string `toml:"on_failure"`
	// PreserveOriginals copies files into the library instead of moving them.
	PreserveOriginals bool `toml:"preserve_originals"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediaorg.
//
// Configuration sections by subsystem:
//   - Paths: library root, log directory, action log directory, history DB
//   - Library: output directory structure (movies/tv subdirs) and overwrite policy
//   - Matching: duration tolerances, confidence weights, unmatched floor
//   - Execution: failure policy and move-vs-copy behavior
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Library   Library   `toml:"library"`
	Matching  Matching  `toml:"matching"`
	Execution Execution `toml:"execution"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediaorg/config.toml")
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to target.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediaorg.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories. LibraryDir is created on a
// best-effort basis so commands can run when external storage is temporarily
// unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.ActionLogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
