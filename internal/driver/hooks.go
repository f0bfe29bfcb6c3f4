package driver

import (
	"fmt"
	"sort"
	"strings"

	"optdrive/internal/config"
	"optdrive/internal/encoding"
	"optdrive/internal/setting"
)

// EncodeValueIfNeeded resolves the value to hand to the managed application
// for one configured setting. Settings without an encoder validate their
// adjust value against the configured bounds or enumeration and pass it
// through; encoder-backed settings encode the underlying values from
// adjustData into the encoder's primitive.
func EncodeValueIfNeeded(name string, settingCfg config.SettingConfig, adjustData map[string]map[string]any) (any, error) {
	if settingCfg.Encoder == nil {
		entry, ok := adjustData[name]
		if !ok {
			return nil, fmt.Errorf("%w: no adjust data for setting %q", setting.ErrValue, name)
		}
		return validatePlain(name, settingCfg, entry["value"])
	}

	encoderCfg, err := encoding.ParseConfig(settingCfg.Encoder)
	if err != nil {
		return nil, err
	}
	value, _, err := encoding.Encode(encoderCfg, adjustData, "")
	if err != nil {
		return nil, err
	}
	return value, nil
}

// validatePlain checks a passthrough value against the setting's own shape:
// range settings are bounds-checked and realigned onto the step grid, enum
// settings must match one of the allowed values.
func validatePlain(name string, settingCfg config.SettingConfig, value any) (any, error) {
	if len(settingCfg.Values) > 0 {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: value for setting %q must be a string, got %T", setting.ErrValue, name, value)
		}
		for _, allowed := range settingCfg.Values {
			if s == allowed {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%w: value %q for setting %q is not one of %s",
			setting.ErrValue, s, name, strings.Join(settingCfg.Values, ", "))
	}
	if settingCfg.Min != nil || settingCfg.Max != nil || settingCfg.Step != nil || settingCfg.Type == "range" {
		r, err := setting.NewRange(name, setting.Defaults{Unit: settingCfg.Unit}, settingCfg.RangeOptions())
		if err != nil {
			return nil, err
		}
		return r.ValidateValue(value)
	}
	return value, nil
}

// EncodeDescribeIfNeeded renders the description of one configured setting
// from the raw value the managed application reported. Settings without an
// encoder wrap the raw value with whatever bounds the configuration carries;
// encoder-backed settings decode the raw primitive into the underlying
// settings. Raw strings are whitespace-split before decoding.
func EncodeDescribeIfNeeded(name string, settingCfg config.SettingConfig, raw any) (map[string]setting.Descriptor, error) {
	if settingCfg.Encoder == nil {
		return map[string]setting.Descriptor{
			name: {
				Type:    settingCfg.Type,
				Min:     settingCfg.Min,
				Max:     settingCfg.Max,
				Step:    settingCfg.Step,
				Unit:    settingCfg.Unit,
				Values:  settingCfg.Values,
				Default: settingCfg.Default,
				Value:   raw,
			},
		}, nil
	}

	encoderCfg, err := encoding.ParseConfig(settingCfg.Encoder)
	if err != nil {
		return nil, err
	}
	data := raw
	if s, ok := raw.(string); ok {
		data = strings.Fields(s)
	}
	return encoding.Describe(encoderCfg, data)
}

// BackendSettings expands a settings configuration into the list of setting
// names the backend protocol actually exchanges: encoder-backed settings
// expand to the encoder's owned names, everything else passes through.
func BackendSettings(settings map[string]config.SettingConfig) ([]string, error) {
	var names []string
	for name, settingCfg := range settings {
		if settingCfg.Encoder == nil {
			names = append(names, name)
			continue
		}
		encoderCfg, err := encoding.ParseConfig(settingCfg.Encoder)
		if err != nil {
			return nil, err
		}
		owned, err := encoding.OwnedSettings(encoderCfg)
		if err != nil {
			return nil, err
		}
		names = append(names, owned...)
	}
	sort.Strings(names)
	return names, nil
}
