package encoding

import (
	"fmt"
	"strings"

	"optdrive/internal/setting"
)

// configKeys is the allow-list of top-level keys in an encoder configuration.
var configKeys = map[string]struct{}{
	"name":          {},
	"expected_type": {},
	"settings":      {},
}

// Config describes one encoder section: the encoder identifier, an optional
// output representation selector, and the per-setting configurations the
// encoder instance is built from. The encoder name is always embedded in the
// configuration object.
type Config struct {
	Name         string
	ExpectedType string
	Settings     map[string]map[string]any
}

// ParseConfig validates the raw mapping form of an encoder configuration and
// converts it into a Config. Unknown keys, a missing name, or a malformed
// settings table are configuration errors.
func ParseConfig(raw map[string]any) (*Config, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: encoder configuration must be a mapping", setting.ErrConfiguration)
	}
	for key := range raw {
		if _, ok := configKeys[key]; !ok {
			return nil, fmt.Errorf("%w: unrecognized key %q in encoder configuration", setting.ErrConfiguration, key)
		}
	}

	cfg := &Config{Settings: map[string]map[string]any{}}

	name, ok := raw["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: encoder configuration requires a non-empty name", setting.ErrConfiguration)
	}
	cfg.Name = name

	if rawType, present := raw["expected_type"]; present {
		expectedType, isString := rawType.(string)
		if !isString {
			return nil, fmt.Errorf("%w: expected_type for encoder %q must be a string, got %T",
				setting.ErrConfiguration, name, rawType)
		}
		cfg.ExpectedType = expectedType
	}

	if rawSettings, present := raw["settings"]; present {
		settings, isTable := asTable(rawSettings)
		if !isTable {
			return nil, fmt.Errorf("%w: settings for encoder %q must be a mapping, got %T",
				setting.ErrConfiguration, name, rawSettings)
		}
		for settingName, rawSetting := range settings {
			if rawSetting == nil {
				cfg.Settings[settingName] = map[string]any{}
				continue
			}
			settingConfig, isTable := asTable(rawSetting)
			if !isTable {
				return nil, fmt.Errorf("%w: configuration for setting %q of encoder %q must be a mapping, got %T",
					setting.ErrConfiguration, settingName, name, rawSetting)
			}
			cfg.Settings[settingName] = settingConfig
		}
	}

	return cfg, nil
}

// asTable normalizes the mapping representations the TOML, YAML, and JSON
// decoders produce.
func asTable(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for key, val := range m {
			name, ok := key.(string)
			if !ok {
				return nil, false
			}
			out[name] = val
		}
		return out, true
	default:
		return nil, false
	}
}
