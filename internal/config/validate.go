package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.StateFile == "" {
		return errors.New("paths.state_file must be set")
	}
	if c.Lock.TimeoutSeconds < 0 {
		return errors.New("lock.timeout_seconds must be zero or positive")
	}
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("logging.format must be console, json, or auto (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
