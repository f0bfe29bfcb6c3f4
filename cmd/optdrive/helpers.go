package main

import (
	"fmt"
	"strings"

	"optdrive/internal/config"
	"optdrive/internal/setting"
)

// resolveAppID picks the application identifier for an operation: the
// positional argument when given, otherwise driver.name from configuration.
func resolveAppID(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		if id := strings.TrimSpace(args[0]); id != "" {
			return id, nil
		}
	}
	if id := strings.TrimSpace(cfg.Driver.Name); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: application id required (pass it as an argument or set driver.name)", setting.ErrConfiguration)
}
