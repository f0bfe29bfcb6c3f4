package encoding

import "optdrive/internal/setting"

// Encoder converts between a set of logical setting values and one encoded
// primitive understood by the managed application. Implementations are
// stateless per invocation and constructed from an encoder configuration.
type Encoder interface {
	// Describe returns the settings this encoder manages and their bounds,
	// derived from its configuration.
	Describe() (map[string]setting.Descriptor, error)

	// EncodeMulti produces one encoded primitive from a mapping of setting
	// name to value. A nil value means the caller had no value for that
	// setting; the encoder decides whether that is an error. expectedType
	// selects the output representation and arrives already resolved by the
	// orchestration layer; empty means the encoder default.
	EncodeMulti(values map[string]any, expectedType string) (any, error)

	// DecodeMulti is the inverse of EncodeMulti: it recovers the mapping of
	// setting name to value from an encoded primitive.
	DecodeMulti(data any) (map[string]any, error)
}
