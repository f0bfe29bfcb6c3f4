package driver

import (
	"encoding/json"
	"io"
	"sync"
)

// Emitter serializes protocol objects onto one writer, one JSON object per
// line. Responses and heartbeats share the writer, so emission is locked.
type Emitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewEmitter wraps the protocol writer, normally stdout.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{enc: json.NewEncoder(w)}
}

// Emit writes one protocol object followed by a newline.
func (e *Emitter) Emit(v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(v)
}
