// Package model defines the core record type, per-type validation rules,
// and the validation engine for the refdata entity store.
package model

import "time"

// Payload is the open key/value mapping attached to a record. Values are
// JSON-compatible: string, float64, bool, []any, or map[string]any.
type Payload = map[string]any

// reservedKeys are record attributes stored outside the payload. They are
// stripped from incoming payloads and merged back only when rendering views.
var reservedKeys = [...]string{"id", "type", "name", "createdAt", "updatedAt"}

// Record is a generic, type-tagged reference entity. Records of all types
// share one table; type-specific attributes live in Payload.
type Record struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Payload   Payload   `json:"payload,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScrubPayload removes reserved record attributes from a payload in place
// and returns it. A nil payload is returned as nil.
func ScrubPayload(p Payload) Payload {
	if p == nil {
		return nil
	}
	for _, k := range reservedKeys {
		delete(p, k)
	}
	return p
}

// MergePayload returns a new payload holding base overlaid with patch
// (shallow key overwrite: patch keys replace, unspecified base keys are
// retained). Neither input is modified.
func MergePayload(base, patch Payload) Payload {
	merged := make(Payload, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
