// Package testsupport builds throwaway configurations and fixtures for
// package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"optdrive/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Workflow.ProgressIntervalSeconds = 0
	cfgVal.Commands.TimeoutSeconds = 30

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithComponents sets the components section of the test config.
func WithComponents(components map[string]config.Component) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Components = components
	}
}

// WithCommands sets the external commands of the test config.
func WithCommands(commands config.Commands) ConfigOption {
	return func(b *configBuilder) {
		if commands.TimeoutSeconds == 0 {
			commands.TimeoutSeconds = b.cfg.Commands.TimeoutSeconds
		}
		b.cfg.Commands = commands
	}
}

// WriteScript drops an executable shell script into the test directory and
// returns its path. Used to stand in for the managed application's commands.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}
