package setting

import "errors"

var (
	// ErrConfiguration marks malformed or contradictory static configuration.
	// These failures are detectable without any runtime value and surface at
	// construction time, never mid-operation.
	ErrConfiguration = errors.New("configuration error")

	// ErrValue marks a supplied runtime value that is absent, non-numeric,
	// out of bounds, or off the step grid.
	ErrValue = errors.New("value error")
)
