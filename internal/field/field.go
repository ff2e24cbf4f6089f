// Package field provides a three-state optional value for PATCH payloads:
// absent (key not supplied), cleared (explicit null), or set to a value.
// encoding/json only invokes UnmarshalJSON for keys present in the document,
// so the zero Field is the absent state.
package field

import (
	"bytes"
	"encoding/json"
)

// Field wraps an optional value distinguishing "not supplied" from "explicitly
// cleared". Use it for struct members decoded from PATCH bodies.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] { return Field[T]{present: true, value: v} }

// Clear returns a Field in the explicitly-cleared state.
func Clear[T any]() Field[T] { return Field[T]{present: true, null: true} }

// Absent reports that the key was not supplied at all.
func (f Field[T]) Absent() bool { return !f.present }

// Cleared reports that the key was supplied as an explicit null.
func (f Field[T]) Cleared() bool { return f.present && f.null }

// Get returns the value and true when the field carries one.
func (f Field[T]) Get() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Or returns the carried value, or fallback when absent or cleared.
func (f Field[T]) Or(fallback T) T {
	if v, ok := f.Get(); ok {
		return v
	}
	return fallback
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.present = true
	if bytes.Equal(b, []byte("null")) {
		f.null = true
		return nil
	}
	return json.Unmarshal(b, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
