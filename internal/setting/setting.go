package setting

// Setting is one tunable parameter. Concrete kinds validate their
// configuration at construction and expose a canonical description.
type Setting interface {
	// Describe returns the setting name and its defining parameters.
	Describe() (string, Descriptor)
}

// DescribeAll collects the canonical descriptors of a group of settings,
// keyed by setting name.
func DescribeAll(settings ...Setting) map[string]Descriptor {
	descriptors := make(map[string]Descriptor, len(settings))
	for _, s := range settings {
		name, descriptor := s.Describe()
		descriptors[name] = descriptor
	}
	return descriptors
}

// Descriptor carries the defining parameters of a setting in the shape the
// backend protocol exchanges. Optional fields are omitted from JSON output
// when unset.
type Descriptor struct {
	Type    string   `json:"type,omitempty" yaml:"type,omitempty"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step    *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Unit    string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Values  []string `json:"values,omitempty" yaml:"values,omitempty"`
	Default *float64 `json:"default,omitempty" yaml:"default,omitempty"`
	Value   any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// Defaults holds the class-level defaults of a concrete setting kind. They are
// merged with the user-supplied configuration before any validation runs; the
// configuration wins wherever both define a field.
type Defaults struct {
	Min     *float64
	Max     *float64
	Step    *float64
	Default *float64
	Unit    string

	// FreezeRange forbids any configuration override of min, max, or step.
	// Requires all three class defaults to be present.
	FreezeRange bool

	// NoRelax permits the configuration to narrow but never widen the default
	// bounds, and restricts the step to integer multiples of the default step.
	// Requires all three class defaults to be present.
	NoRelax bool
}

// Number is a convenience constructor for optional numeric defaults.
func Number(v float64) *float64 {
	return &v
}
