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
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Driver contains the identity the driver reports to the backend.
type Driver struct {
	Name      string `toml:"name" yaml:"name"`
	Version   string `toml:"version" yaml:"version"`
	HasCancel bool   `toml:"has_cancel" yaml:"has_cancel"`
}

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir" yaml:"state_dir"`
	LogDir   string `toml:"log_dir" yaml:"log_dir"`
}

// Commands contains the external commands the driver runs to talk to the
// managed application. Apply receives the encoded settings payload on stdin;
// Query must print the current raw values as JSON on stdout.
type Commands struct {
	Pre            string `toml:"pre" yaml:"pre"`
	Post           string `toml:"post" yaml:"post"`
	Apply          string `toml:"apply" yaml:"apply"`
	Query          string `toml:"query" yaml:"query"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Workflow contains driver timing configuration.
type Workflow struct {
	ProgressIntervalSeconds int `toml:"progress_interval_seconds" yaml:"progress_interval_seconds"`
}

// Logging contains configuration for log output. Logs go to stderr and the
// log file; stdout carries the backend protocol.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// SettingConfig describes one tunable setting of a component. A setting
// either carries its own bounds (range), an enumeration (values), or
// delegates to an encoder section in the embedded-name shape.
type SettingConfig struct {
	Type    string         `toml:"type" yaml:"type"`
	Min     *float64       `toml:"min" yaml:"min"`
	Max     *float64       `toml:"max" yaml:"max"`
	Step    *float64       `toml:"step" yaml:"step"`
	Default *float64       `toml:"default" yaml:"default"`
	Unit    string         `toml:"unit" yaml:"unit"`
	Values  []string       `toml:"values" yaml:"values"`
	Encoder map[string]any `toml:"encoder" yaml:"encoder"`
}

// RangeOptions renders the setting's own bounds in the mapping form the
// range constructor consumes. Unset fields are omitted.
func (s SettingConfig) RangeOptions() map[string]any {
	options := map[string]any{}
	if s.Min != nil {
		options["min"] = *s.Min
	}
	if s.Max != nil {
		options["max"] = *s.Max
	}
	if s.Step != nil {
		options["step"] = *s.Step
	}
	if s.Default != nil {
		options["default"] = *s.Default
	}
	return options
}

// Component groups the settings of one adjustable application component.
type Component struct {
	Settings map[string]SettingConfig `toml:"settings" yaml:"settings"`
}

// Config encapsulates all configuration values for optdrive.
type Config struct {
	Driver     Driver               `toml:"driver" yaml:"driver"`
	Paths      Paths                `toml:"paths" yaml:"paths"`
	Commands   Commands             `toml:"commands" yaml:"commands"`
	Workflow   Workflow             `toml:"workflow" yaml:"workflow"`
	Logging    Logging              `toml:"logging" yaml:"logging"`
	Components map[string]Component `toml:"components" yaml:"components"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/optdrive/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. YAML files are
// recognized by extension; everything else decodes as TOML.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := decodeConfig(resolvedPath, data, &cfg); err != nil {
			return nil, "", false, err
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

func decodeConfig(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
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

	projectPath, err := filepath.Abs("optdrive.toml")
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

// EnsureDirectories creates the directories the driver needs to operate.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CommandShell returns the shell used to run configured commands.
func (c *Config) CommandShell() string {
	return "/bin/bash"
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

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
