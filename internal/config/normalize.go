package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeExecution()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ActionLogDir) == "" {
		c.Paths.ActionLogDir = defaultActionLogDir
	}
	if c.Paths.ActionLogDir, err = expandPath(c.Paths.ActionLogDir); err != nil {
		return fmt.Errorf("paths.action_log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() {
	if c.Matching.ExactToleranceSeconds <= 0 {
		c.Matching.ExactToleranceSeconds = defaultExactToleranceSeconds
	}
	if c.Matching.CloseToleranceSeconds <= 0 {
		c.Matching.CloseToleranceSeconds = defaultCloseToleranceSeconds
	}
	if c.Matching.NameWeight == 0 && c.Matching.DurationWeight == 0 {
		c.Matching.NameWeight = defaultNameWeight
		c.Matching.DurationWeight = defaultDurationWeight
	}
	if c.Matching.UnmatchedFloor <= 0 {
		c.Matching.UnmatchedFloor = defaultUnmatchedFloor
	}
	if c.Matching.ProbeWorkers <= 0 {
		c.Matching.ProbeWorkers = defaultProbeWorkers
	}
}

func (c *Config) normalizeExecution() {
	c.Execution.OnFailure = strings.ToLower(strings.TrimSpace(c.Execution.OnFailure))
	if c.Execution.OnFailure == "" {
		c.Execution.OnFailure = defaultOnFailure
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
