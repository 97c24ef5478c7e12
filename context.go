package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"library-catalog/internal/config"
	"library-catalog/internal/logging"
	"library-catalog/library"
)

type commandContext struct {
	configFlag *string
	stateFlag  *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, stateFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		stateFlag:  stateFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.stateFlag != nil && strings.TrimSpace(*c.stateFlag) != "" {
			expanded, err := config.ExpandPath(strings.TrimSpace(*c.stateFlag))
			if err != nil {
				c.configErr = fmt.Errorf("resolve --state: %w", err)
				return
			}
			cfg.Paths.StateFile = expanded
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger.With("session_id", uuid.NewString())
	})
	return c.logger, c.loggerErr
}

// openManager locks and loads the configured state file.
func (c *commandContext) openManager(cmd *cobra.Command) (*library.LibraryManager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return library.NewLibraryManager(cmd.Context(), library.ManagerOptions{
		StatePath:   cfg.Paths.StateFile,
		LockTimeout: cfg.LockTimeout(),
		Logger:      logger,
	})
}

// withManager runs fn against the catalog. When save is set the state file is
// written after fn succeeds.
func (c *commandContext) withManager(cmd *cobra.Command, save bool, fn func(*library.LibraryManager) error) error {
	mgr, err := c.openManager(cmd)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := fn(mgr); err != nil {
		return err
	}
	if save {
		return mgr.Save()
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
