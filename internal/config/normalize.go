package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("LMS_STATE_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateFile = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.StateFile) == "" {
		c.Paths.StateFile = defaultStateFile
	}
	var err error
	if c.Paths.StateFile, err = expandPath(c.Paths.StateFile); err != nil {
		return fmt.Errorf("paths.state_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("LMS_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
