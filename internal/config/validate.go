package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateExecution(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLibrary() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Library.MoviesDir == "" {
		return errors.New("library.movies_dir must be set")
	}
	if c.Library.TVDir == "" {
		return errors.New("library.tv_dir must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.ExactToleranceSeconds > c.Matching.CloseToleranceSeconds {
		return fmt.Errorf(
			"matching.exact_tolerance_seconds (%d) must not exceed matching.close_tolerance_seconds (%d)",
			c.Matching.ExactToleranceSeconds, c.Matching.CloseToleranceSeconds,
		)
	}
	if c.Matching.NameWeight < 0 || c.Matching.DurationWeight < 0 {
		return errors.New("matching weights must not be negative")
	}
	if sum := c.Matching.NameWeight + c.Matching.DurationWeight; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("matching.name_weight + matching.duration_weight must equal 1.0, got %.3f", sum)
	}
	if c.Matching.UnmatchedFloor < 0 || c.Matching.UnmatchedFloor > 100 {
		return errors.New("matching.unmatched_floor must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateExecution() error {
	switch c.Execution.OnFailure {
	case "rollback", "skip":
		return nil
	default:
		return fmt.Errorf("execution.on_failure: unsupported value %q (expected \"rollback\" or \"skip\")", c.Execution.OnFailure)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
