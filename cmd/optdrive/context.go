package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"optdrive/internal/config"
	"optdrive/internal/driver"
	"optdrive/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	emitterOnce sync.Once
	emitter     *driver.Emitter
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
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
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// protocolEmitter returns the shared emitter for protocol output, bound to
// the command's stdout so responses and heartbeats interleave on one stream.
func (c *commandContext) protocolEmitter(cmd *cobra.Command) *driver.Emitter {
	c.emitterOnce.Do(func() {
		c.emitter = driver.NewEmitter(cmd.OutOrStdout())
	})
	return c.emitter
}
