package setting

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// gridTolerance is the relative closeness to the nearest integer multiple
// accepted by the grid and value checks. Upstream optimizers produce values
// through floating-point arithmetic, so exact equality would reject valid
// inputs at the boundaries.
const gridTolerance = 1.0 / 1024

// rangeOptions is the allow-list of configuration keys a Range recognizes.
var rangeOptions = map[string]struct{}{
	"min":     {},
	"max":     {},
	"step":    {},
	"default": {},
	"unit":    {},
}

// Range is a numeric setting whose domain is the interval [min, max]
// quantized by step. The zero value is not usable; construct with NewRange.
type Range struct {
	name string
	min  float64
	max  float64
	step float64
	def  *float64
	unit string
}

// NewRange merges the class defaults with the user configuration and
// validates the effective result. The config may be nil or empty; every key
// present must belong to the recognized option set.
func NewRange(name string, defaults Defaults, config map[string]any) (*Range, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: range setting requires a name", ErrConfiguration)
	}
	for key := range config {
		if _, ok := rangeOptions[key]; !ok {
			return nil, fmt.Errorf("%w: unrecognized option %q for setting %q (supported: %s)",
				ErrConfiguration, key, name, strings.Join(sortedOptions(), ", "))
		}
	}

	if defaults.FreezeRange {
		if defaults.Min == nil || defaults.Max == nil || defaults.Step == nil {
			return nil, fmt.Errorf("%w: frozen range for setting %q requires class defaults for min, max, and step",
				ErrConfiguration, name)
		}
		for _, key := range []string{"min", "max", "step"} {
			if _, ok := config[key]; ok {
				return nil, fmt.Errorf("%w: range for setting %q is frozen; option %q cannot be overridden",
					ErrConfiguration, name, key)
			}
		}
	}

	min, err := resolveNumber(name, "min", config, defaults.Min)
	if err != nil {
		return nil, err
	}
	max, err := resolveNumber(name, "max", config, defaults.Max)
	if err != nil {
		return nil, err
	}
	step, err := resolveNumber(name, "step", config, defaults.Step)
	if err != nil {
		return nil, err
	}

	if min > max {
		return nil, fmt.Errorf("%w: lower boundary %v is higher than upper boundary %v in setting %q",
			ErrConfiguration, min, max, name)
	}
	if min != max && step <= 0 {
		return nil, fmt.Errorf("%w: step for setting %q must be positive when min != max, got %v",
			ErrConfiguration, name, step)
	}
	if step > 0 {
		spans := (max - min) / step
		if math.Abs(spans-math.Round(spans)) > gridTolerance {
			return nil, fmt.Errorf("%w: step %v for setting %q cannot reach %v from %v in equal steps",
				ErrConfiguration, step, name, max, min)
		}
	}

	if defaults.NoRelax {
		if defaults.Min == nil || defaults.Max == nil || defaults.Step == nil {
			return nil, fmt.Errorf("%w: default min, max, and step for setting %q must be configured to disallow relaxation",
				ErrConfiguration, name)
		}
		if min < *defaults.Min {
			return nil, fmt.Errorf("%w: min for setting %q cannot be lower than %v, got %v",
				ErrConfiguration, name, *defaults.Min, min)
		}
		if max > *defaults.Max {
			return nil, fmt.Errorf("%w: max for setting %q cannot be higher than %v, got %v",
				ErrConfiguration, name, *defaults.Max, max)
		}
		ratio := step / *defaults.Step
		if math.Abs(ratio-math.Round(ratio)) > gridTolerance {
			return nil, fmt.Errorf("%w: step for setting %q must be a multiple of the default %v, got %v",
				ErrConfiguration, name, *defaults.Step, step)
		}
	}

	r := &Range{name: name, min: min, max: max, step: step, unit: defaults.Unit}
	if raw, ok := config["unit"]; ok {
		unit, isString := raw.(string)
		if !isString {
			return nil, fmt.Errorf("%w: unit for setting %q must be a string, got %T", ErrConfiguration, name, raw)
		}
		r.unit = unit
	}
	if raw, ok := config["default"]; ok {
		def, isNumber := toFloat(raw)
		if !isNumber {
			return nil, fmt.Errorf("%w: default for setting %q must be a number, got %v", ErrConfiguration, name, raw)
		}
		r.def = &def
	} else if defaults.Default != nil {
		def := *defaults.Default
		r.def = &def
	}

	return r, nil
}

// ValidateValue checks value against the bounds and step grid and returns the
// value re-snapped onto the nearest exact grid point. Pure; callable
// concurrently.
func (r *Range) ValidateValue(value any) (float64, error) {
	if value == nil {
		return 0, fmt.Errorf("%w: no value provided for setting %q", ErrValue, r.name)
	}
	v, ok := toFloat(value)
	if !ok {
		return 0, fmt.Errorf("%w: value for setting %q must be a number, got %T", ErrValue, r.name, value)
	}
	// step/1024 of slack allows for floating rounding at the exact boundary.
	if v < r.min-r.step/1024 {
		return 0, fmt.Errorf("%w: value %v violates the lower bound %v in setting %q", ErrValue, v, r.min, r.name)
	}
	if v > r.max+r.step/1024 {
		return 0, fmt.Errorf("%w: value %v violates the upper bound %v in setting %q", ErrValue, v, r.max, r.name)
	}
	if r.min < r.max && r.step > 0 {
		c := (v - r.min) / r.step
		n := math.Round(c)
		if math.Abs(c-n) > gridTolerance {
			return 0, fmt.Errorf("%w: value %v violates the step requirement in setting %q (step %v)",
				ErrValue, v, r.name, r.step)
		}
		return n*r.step + r.min, nil
	}
	return v, nil
}

// Describe returns the setting name and its canonical descriptor.
func (r *Range) Describe() (string, Descriptor) {
	min, max, step := r.min, r.max, r.step
	desc := Descriptor{
		Type: "range",
		Min:  &min,
		Max:  &max,
		Step: &step,
		Unit: r.unit,
	}
	if r.def != nil {
		def := *r.def
		desc.Default = &def
	}
	return r.name, desc
}

// Name returns the setting identifier.
func (r *Range) Name() string { return r.name }

// Default returns the effective default value, or nil when none is set.
func (r *Range) Default() *float64 {
	if r.def == nil {
		return nil
	}
	def := *r.def
	return &def
}

func resolveNumber(setting, option string, config map[string]any, fallback *float64) (float64, error) {
	if raw, ok := config[option]; ok {
		v, isNumber := toFloat(raw)
		if !isNumber {
			return 0, fmt.Errorf("%w: %s value for setting %q must be a number, got %v",
				ErrConfiguration, option, setting, raw)
		}
		return v, nil
	}
	if fallback == nil {
		return 0, fmt.Errorf("%w: no %s value configured for setting %q", ErrConfiguration, option, setting)
	}
	return *fallback, nil
}

// toFloat coerces the numeric types the TOML, YAML, and JSON decoders
// produce into a float64.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func sortedOptions() []string {
	options := make([]string, 0, len(rangeOptions))
	for option := range rangeOptions {
		options = append(options, option)
	}
	sort.Strings(options)
	return options
}
