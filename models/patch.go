package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a patch field. Set is false when the key was absent from the
// request body; Null is true when it was present with a JSON null.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Apply overwrites dst when the field was provided with a non-null value.
func (o Optional[T]) Apply(dst *T) {
	if o.Set && !o.Null {
		*dst = o.Value
	}
}

// ApplyPtr overwrites a nullable field; an explicit null clears it.
func (o Optional[T]) ApplyPtr(dst **T) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}
