package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Optional holds a value that upstream may never have provided.
// The zero Optional is unset, which is distinct from a set zero value:
// Some(0) is a rating of zero, Optional[float64]{} means "no rating given".
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Unset returns an Optional that carries no value.
func Unset[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a nil-able pointer into an Optional.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Optional[T]{}
	}
	return Some(*p)
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse returns the value when set, fallback otherwise.
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// Ptr returns a pointer to a copy of the value, or nil when unset.
func (o Optional[T]) Ptr() *T {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// Or returns o when set, other otherwise.
func (o Optional[T]) Or(other Optional[T]) Optional[T] {
	if o.set {
		return o
	}
	return other
}

func (o Optional[T]) String() string {
	if !o.set {
		return "<unset>"
	}
	return fmt.Sprint(o.value)
}

// MarshalJSON encodes an unset value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON treats null as unset.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
