// Package jvm encodes numeric settings into a JVM command-line flags string.
//
// Only the settings named in the encoder configuration are owned by an
// instance; each is validated as a Range against the class defaults below.
// The encoded primitive is a single space-joined string by default, or a
// slice of flag strings when expected_type is "list".
package jvm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"optdrive/internal/encoding"
	"optdrive/internal/setting"
)

func init() {
	encoding.Register("jvm", New)
}

// option ties a supported setting to its class defaults and flag syntax.
type option struct {
	defaults setting.Defaults
	prefix   string
	suffix   string
}

var options = map[string]option{
	"MaxHeapSize": {
		defaults: setting.Defaults{
			Min:     setting.Number(128),
			Max:     setting.Number(6144),
			Step:    setting.Number(128),
			Unit:    "MiB",
			NoRelax: true,
		},
		prefix: "-Xmx",
		suffix: "m",
	},
	"InitialHeapSize": {
		defaults: setting.Defaults{
			Min:  setting.Number(128),
			Max:  setting.Number(6144),
			Step: setting.Number(128),
			Unit: "MiB",
		},
		prefix: "-Xms",
		suffix: "m",
	},
	"GCTimeRatio": {
		defaults: setting.Defaults{
			Min:         setting.Number(9),
			Max:         setting.Number(99),
			Step:        setting.Number(1),
			FreezeRange: true,
		},
		prefix: "-XX:GCTimeRatio=",
	},
	"MaxGCPauseMillis": {
		defaults: setting.Defaults{
			Min:  setting.Number(10),
			Max:  setting.Number(500),
			Step: setting.Number(10),
			Unit: "ms",
		},
		prefix: "-XX:MaxGCPauseMillis=",
	},
}

// Encoder renders the configured settings as JVM flags.
type Encoder struct {
	settings map[string]*setting.Range
	order    []string
}

// New builds an encoder instance from the configuration, validating every
// configured setting against its class defaults.
func New(cfg *encoding.Config) (encoding.Encoder, error) {
	e := &Encoder{settings: make(map[string]*setting.Range, len(cfg.Settings))}
	for name, rawConfig := range cfg.Settings {
		opt, supported := options[name]
		if !supported {
			return nil, fmt.Errorf("%w: encoder \"jvm\" does not support setting %q (supported: %s)",
				setting.ErrConfiguration, name, strings.Join(supportedNames(), ", "))
		}
		r, err := setting.NewRange(name, opt.defaults, rawConfig)
		if err != nil {
			return nil, err
		}
		e.settings[name] = r
		e.order = append(e.order, name)
	}
	sort.Strings(e.order)
	return e, nil
}

// Describe reports the owned settings and their effective bounds.
func (e *Encoder) Describe() (map[string]setting.Descriptor, error) {
	owned := make([]setting.Setting, 0, len(e.settings))
	for _, r := range e.settings {
		owned = append(owned, r)
	}
	return setting.DescribeAll(owned...), nil
}

// EncodeMulti validates each owned value and renders the flags string.
// A nil value falls back to the setting default; without one it is a value
// error. Flags are emitted in sorted setting order so equal inputs produce
// byte-identical output.
func (e *Encoder) EncodeMulti(values map[string]any, expectedType string) (any, error) {
	switch expectedType {
	case "", "str", "list":
	default:
		return nil, fmt.Errorf("%w: unsupported expected_type %q for encoder \"jvm\"",
			setting.ErrConfiguration, expectedType)
	}

	flags := make([]string, 0, len(e.order))
	for _, name := range e.order {
		r := e.settings[name]
		value := values[name]
		if value == nil {
			def := r.Default()
			if def == nil {
				return nil, fmt.Errorf("%w: no value provided for setting %q and no default is configured",
					setting.ErrValue, name)
			}
			value = *def
		}
		aligned, err := r.ValidateValue(value)
		if err != nil {
			return nil, err
		}
		opt := options[name]
		flags = append(flags, opt.prefix+formatNumber(aligned)+opt.suffix)
	}

	if expectedType == "list" {
		return flags, nil
	}
	return strings.Join(flags, " "), nil
}

// DecodeMulti parses a flags string (or slice) back into owned setting
// values. Flags this instance does not own are ignored; a malformed owned
// flag is a value error.
func (e *Encoder) DecodeMulti(data any) (map[string]any, error) {
	tokens, err := tokenize(data)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any)
	for _, token := range tokens {
		for _, name := range e.order {
			opt := options[name]
			body, ok := strings.CutPrefix(token, opt.prefix)
			if !ok {
				continue
			}
			body, ok = strings.CutSuffix(body, opt.suffix)
			if !ok {
				continue
			}
			parsed, err := strconv.ParseFloat(body, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: cannot parse flag %q for setting %q", setting.ErrValue, token, name)
			}
			values[name] = parsed
		}
	}
	return values, nil
}

func tokenize(data any) ([]string, error) {
	switch d := data.(type) {
	case string:
		return strings.Fields(d), nil
	case []string:
		return d, nil
	case []any:
		tokens := make([]string, 0, len(d))
		for _, entry := range d {
			token, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("%w: encoder \"jvm\" cannot decode element of type %T", setting.ErrValue, entry)
			}
			tokens = append(tokens, token)
		}
		return tokens, nil
	case nil:
		return nil, fmt.Errorf("%w: encoder \"jvm\" has no data to decode", setting.ErrValue)
	default:
		return nil, fmt.Errorf("%w: encoder \"jvm\" cannot decode data of type %T", setting.ErrValue, data)
	}
}

// formatNumber renders aligned values without a trailing ".0" so integer
// positions round-trip as integers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func supportedNames() []string {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
