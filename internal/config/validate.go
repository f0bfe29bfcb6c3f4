package config

import (
	"errors"
	"fmt"

	"optdrive/internal/encoding"
	"optdrive/internal/setting"
)

// Validate ensures the configuration is usable. Every configured encoder is
// instantiated here so that malformed encoder sections fail at load time.
func (c *Config) Validate() error {
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateComponents(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ProgressIntervalSeconds < 0 {
		return errors.New("workflow.progress_interval_seconds must be >= 0")
	}
	if c.Commands.TimeoutSeconds <= 0 {
		return errors.New("commands.timeout_seconds must be positive")
	}
	return nil
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

func (c *Config) validateComponents() error {
	for componentName, component := range c.Components {
		if len(component.Settings) == 0 {
			return fmt.Errorf("components.%s must define at least one setting", componentName)
		}
		for settingName, settingCfg := range component.Settings {
			if err := validateSetting(settingName, settingCfg); err != nil {
				return fmt.Errorf("components.%s.settings.%s: %w", componentName, settingName, err)
			}
		}
	}
	return nil
}

func validateSetting(name string, cfg SettingConfig) error {
	if cfg.Encoder != nil {
		if cfg.Min != nil || cfg.Max != nil || cfg.Step != nil || len(cfg.Values) > 0 {
			return fmt.Errorf("%w: encoder-backed settings must not carry their own bounds or values",
				setting.ErrConfiguration)
		}
		encoderCfg, err := encoding.ParseConfig(cfg.Encoder)
		if err != nil {
			return err
		}
		// Instantiation validates every setting inside the encoder section.
		if _, err := encoding.Descriptors(encoderCfg); err != nil {
			return err
		}
		return nil
	}

	if len(cfg.Values) > 0 {
		if cfg.Type != "" && cfg.Type != "enum" {
			return fmt.Errorf("%w: settings with values must have type \"enum\", got %q",
				setting.ErrConfiguration, cfg.Type)
		}
		return nil
	}

	if cfg.Min != nil || cfg.Max != nil || cfg.Step != nil || cfg.Type == "range" {
		_, err := setting.NewRange(name, setting.Defaults{Unit: cfg.Unit}, cfg.RangeOptions())
		return err
	}

	return fmt.Errorf("%w: setting must define min/max/step, values, or an encoder", setting.ErrConfiguration)
}
