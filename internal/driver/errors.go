package driver

import (
	"errors"

	"optdrive/internal/setting"
)

// Envelope maps an operation error to the protocol error envelope. The
// reason classifies the failure for the backend: "config" for static
// configuration and resolution errors, "value" for rejected runtime values,
// "unknown" for everything else.
func Envelope(err error) ErrorEnvelope {
	env := ErrorEnvelope{
		Status:  "failed",
		Reason:  "unknown",
		Class:   "AdjustError",
		Message: err.Error(),
	}
	switch {
	case errors.Is(err, setting.ErrConfiguration):
		env.Reason = "config"
		env.Class = "ConfigError"
	case errors.Is(err, setting.ErrValue):
		env.Reason = "value"
		env.Class = "ValueError"
	}
	return env
}
