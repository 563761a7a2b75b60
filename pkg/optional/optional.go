// Package optional provides an explicit present/absent value type.
//
// Option is used wherever "no value" is a meaningful state that must not be
// confused with a zero value: a root node has no parent, and a root record
// carries no parent id. Using a sum type instead of a nil pointer keeps the
// root/non-root distinction visible in signatures.
//
//	id := optional.Some(12)
//	if v, ok := id.Get(); ok {
//	    fmt.Println(v)
//	}
//
// The zero value of Option is absent.
package optional

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Option holds either a value of type T or nothing.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and true, or the zero value and false.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.ok }

// IsNone reports whether the Option is absent.
func (o Option[T]) IsNone() bool { return !o.ok }

// OrElse returns the held value, or def when absent.
func (o Option[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// String implements fmt.Stringer.
func (o Option[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}

// Map applies fn to the held value, if any.
func Map[T, U any](o Option[T], fn func(T) U) Option[U] {
	if !o.ok {
		return None[U]()
	}
	return Some(fn(o.value))
}

// Equal reports whether a and b are both absent, or both present with equal values.
func Equal[T comparable](a, b Option[T]) bool {
	if a.ok != b.ok {
		return false
	}
	return !a.ok || a.value == b.value
}

// MarshalJSON encodes an absent Option as null and a present one as its value.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent and anything else as a present value.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
