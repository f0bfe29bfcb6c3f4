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
	c.normalizeDriver()
	c.normalizeCommands()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if override, ok := os.LookupEnv("OPTDRIVE_STATE_DIR"); ok && strings.TrimSpace(override) != "" {
		c.Paths.StateDir = override
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDriver() {
	c.Driver.Name = strings.TrimSpace(c.Driver.Name)
	if c.Driver.Name == "" {
		c.Driver.Name = defaultDriverName
	}
	c.Driver.Version = strings.TrimSpace(c.Driver.Version)
}

func (c *Config) normalizeCommands() {
	c.Commands.Pre = strings.TrimSpace(c.Commands.Pre)
	c.Commands.Post = strings.TrimSpace(c.Commands.Post)
	c.Commands.Apply = strings.TrimSpace(c.Commands.Apply)
	c.Commands.Query = strings.TrimSpace(c.Commands.Query)
	if c.Commands.TimeoutSeconds == 0 {
		c.Commands.TimeoutSeconds = defaultCommandTimeoutSeconds
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
