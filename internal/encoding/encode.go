package encoding

import (
	"fmt"
	"sort"

	"optdrive/internal/setting"
)

// Encode turns a set of structured values into the encoder's primitive.
// values maps setting name to the mapping form exchanged with the backend
// (at minimum a "value" key); entries for settings the encoder does not own
// are ignored, and owned settings missing from values pass through as nil so
// the encoder decides whether that is an error.
//
// The returned name list reports which logical settings the primitive
// subsumes, so the caller can exclude them from other encodings.
func Encode(cfg *Config, values map[string]map[string]any, expectedType string) (any, []string, error) {
	encoder, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	owned, err := encoder.Describe()
	if err != nil {
		return nil, nil, err
	}

	encodable := make(map[string]any, len(owned))
	names := make([]string, 0, len(owned))
	for name := range owned {
		var value any
		if entry, ok := values[name]; ok {
			value = entry["value"]
		}
		encodable[name] = value
		names = append(names, name)
	}
	sort.Strings(names)

	resolved, err := resolveExpectedType(cfg, expectedType)
	if err != nil {
		return nil, nil, err
	}

	primitive, err := encoder.EncodeMulti(encodable, resolved)
	if err != nil {
		return nil, nil, err
	}
	return primitive, names, nil
}

// Describe decodes an encoded primitive and merges each owned setting's
// static descriptor with its decoded current value.
func Describe(cfg *Config, data any) (map[string]setting.Descriptor, error) {
	encoder, err := New(cfg)
	if err != nil {
		return nil, err
	}
	values, err := encoder.DecodeMulti(data)
	if err != nil {
		return nil, err
	}
	descriptors, err := encoder.Describe()
	if err != nil {
		return nil, err
	}
	for name, descriptor := range descriptors {
		if value, ok := values[name]; ok {
			descriptor.Value = value
			descriptors[name] = descriptor
		}
	}
	return descriptors, nil
}

// OwnedSettings returns the sorted names of the settings the configured
// encoder manages.
func OwnedSettings(cfg *Config) ([]string, error) {
	descriptors, err := Descriptors(cfg)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(descriptors))
	for name := range descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Descriptors instantiates the configured encoder and returns its static
// setting descriptors without decoding any data.
func Descriptors(cfg *Config) (map[string]setting.Descriptor, error) {
	encoder, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return encoder.Describe()
}

// resolveExpectedType applies the call-argument-XOR-config rule: supplying
// the selector in both places is ambiguous even when the two values agree.
func resolveExpectedType(cfg *Config, fromCall string) (string, error) {
	if cfg.ExpectedType != "" && fromCall != "" {
		return "", fmt.Errorf("%w: expected_type for encoder %q supplied both in the configuration and as an argument",
			setting.ErrConfiguration, cfg.Name)
	}
	if fromCall != "" {
		return fromCall, nil
	}
	return cfg.ExpectedType, nil
}
