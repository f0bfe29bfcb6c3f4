// Package logging constructs the slog loggers used across optdrive.
//
// Standard output belongs to the backend protocol, so loggers write to
// stderr and, when configured, a log file. The console handler renders a
// terse single-line format; the json handler emits machine-readable records.
package logging
