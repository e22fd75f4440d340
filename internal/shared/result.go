package shared

import (
	"reflect"
	"slices"
)

type resultState uint8

const (
	stateEmpty resultState = iota
	stateSuccess
	stateFailure
)

// Result is the outcome of a handler: a success value or a non-empty list of
// domain errors. The zero Result is neither; it is what a contained panic or
// error leaves behind, and callers can detect it with IsEmpty.
type Result[T any] struct {
	value T
	errs  []Error
	state resultState
}

// Ok creates a successful result. A nil value is allowed and means "nothing to return".
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, state: stateSuccess}
}

// Fail creates a failed result. Calling it without errors is a programming error.
func Fail[T any](errs ...Error) Result[T] {
	if len(errs) == 0 {
		panic("shared: Fail called without errors")
	}
	return Result[T]{errs: slices.Clone(errs), state: stateFailure}
}

// IsSuccess returns true if the result is successful.
func (r Result[T]) IsSuccess() bool {
	return r.state == stateSuccess
}

// IsFailure returns true if the result carries errors.
func (r Result[T]) IsFailure() bool {
	return r.state == stateFailure
}

// IsEmpty returns true for the zero Result.
func (r Result[T]) IsEmpty() bool {
	return r.state == stateEmpty
}

// Value returns the success value, or the zero value of T for anything else.
func (r Result[T]) Value() T {
	if r.state != stateSuccess {
		var zero T
		return zero
	}
	return r.value
}

// IsNil reports whether the result is a success whose value is absent
// (a nil pointer, map, slice, interface, channel or func).
func (r Result[T]) IsNil() bool {
	if r.state != stateSuccess {
		return false
	}
	v := reflect.ValueOf(any(r.value))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}

// Errors returns a copy of the carried errors in insertion order.
func (r Result[T]) Errors() []Error {
	return slices.Clone(r.errs)
}

// HasError reports whether any carried error has the given kind and returns
// those errors in insertion order.
func (r Result[T]) HasError(kind Kind) (bool, []Error) {
	var matched []Error
	for _, e := range r.errs {
		if e.Kind == kind {
			matched = append(matched, e)
		}
	}
	return len(matched) > 0, matched
}
