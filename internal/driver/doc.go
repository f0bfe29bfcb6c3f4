// Package driver implements the adjust/query runtime around the settings
// encoding framework.
//
// The driver speaks a line-oriented JSON protocol on stdout: operation
// responses, periodic progress heartbeats, and error envelopes. Logs never
// touch stdout. It talks to the managed application through configured shell
// commands and records applied adjustments in the state store.
//
// The hooks in hooks.go (EncodeValueIfNeeded, EncodeDescribeIfNeeded,
// BackendSettings) bridge between the setting names the configuration
// declares and the underlying names the backend protocol exchanges when an
// encoder subsumes several logical settings into one primitive. Settings
// without an encoder do not pass through raw: their adjust values are
// checked against the setting's own range or enumeration and realigned onto
// the step grid, so the apply payload only ever carries exact grid points.
package driver
