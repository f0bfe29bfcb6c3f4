package driver

import (
	"optdrive/internal/setting"
)

// Request is an adjust request read from stdin.
type Request struct {
	Application Application    `json:"application"`
	Control     map[string]any `json:"control,omitempty"`
}

// Application carries per-component setting values.
type Application struct {
	Components map[string]ComponentValues `json:"components"`
}

// ComponentValues maps setting name to its protocol mapping form; the value
// lives under the "value" key.
type ComponentValues struct {
	Settings map[string]map[string]any `json:"settings"`
}

// AdjustResult is the terminal response of an adjust operation.
type AdjustResult struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// QueryResult describes the current state of every configured setting.
type QueryResult struct {
	Application Description `json:"application"`
}

// Description carries per-component setting descriptors.
type Description struct {
	Components map[string]DescribedComponent `json:"components"`
}

// DescribedComponent maps setting name to its descriptor.
type DescribedComponent struct {
	Settings map[string]setting.Descriptor `json:"settings"`
}

// InfoResult is the driver identity response.
type InfoResult struct {
	Version   string `json:"version"`
	HasCancel bool   `json:"has_cancel"`
}

// Progress is a periodic heartbeat emitted while an operation runs.
type Progress struct {
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
}

// ErrorEnvelope is the terminal error response.
type ErrorEnvelope struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Class   string `json:"class"`
	Message string `json:"message"`
}
