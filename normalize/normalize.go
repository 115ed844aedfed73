// Package normalize turns the many shapes a caller may hand over as "rows"
// into one concrete ordered slice.
//
// A value is enumerable when it implements Enumerable, or when it is one of the
// common Go shapes that can be adapted to it: slices, arrays and iter.Seq
// sequences. Everything else is rejected with ErrInvalidInput.
package normalize

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
)

// ErrInvalidInput is returned for data that is neither a fixed collection
// nor a finite sequence.
var ErrInvalidInput = errors.New("data must be a slice, array or finite sequence")

// Enumerable is implemented by values that can produce a finite ordered
// sequence of elements.
//
// Elements may consume the underlying source; callers must not assume it can
// be called twice.
type Enumerable interface {
	Elements() ([]any, error)
}

// EnumerableFunc adapts a function to the Enumerable interface.
type EnumerableFunc func() ([]any, error)

func (fn EnumerableFunc) Elements() ([]any, error) {
	return fn()
}

// Slice wraps a slice of any element type.
func Slice[T any](s []T) Enumerable {
	return EnumerableFunc(func() ([]any, error) {
		out := make([]any, len(s))
		for i, v := range s {
			out[i] = v
		}
		return out, nil
	})
}

// Seq wraps a lazy sequence. The sequence is consumed when Elements is called.
func Seq[T any](seq iter.Seq[T]) Enumerable {
	return EnumerableFunc(func() ([]any, error) {
		if seq == nil {
			return nil, fmt.Errorf("%w: nil sequence", ErrInvalidInput)
		}
		var out []any
		for v := range seq {
			out = append(out, v)
		}
		return out, nil
	})
}

// Seq2 wraps a lazy sequence whose producer can fail. Iteration stops at the
// first error, which is returned as is.
func Seq2[T any](seq iter.Seq2[T, error]) Enumerable {
	return EnumerableFunc(func() ([]any, error) {
		if seq == nil {
			return nil, fmt.Errorf("%w: nil sequence", ErrInvalidInput)
		}
		var out []any
		for v, err := range seq {
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	})
}

// ToSlice materializes v into an ordered slice of its elements.
//
// []byte and string are scalars here, not sequences of bytes or runes. Maps
// are rejected since their iteration order is not defined.
func ToSlice(v any) ([]any, error) {
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w, nil given", ErrInvalidInput)
	case Enumerable:
		return v.Elements()
	case []any:
		return v, nil
	case []string:
		return Slice(v).Elements()
	case [][]string:
		return Slice(v).Elements()
	case [][]any:
		return Slice(v).Elements()
	case iter.Seq[any]:
		return Seq(v).Elements()
	case iter.Seq[string]:
		return Seq(v).Elements()
	case iter.Seq[[]string]:
		return Seq(v).Elements()
	case iter.Seq[[]any]:
		return Seq(v).Elements()
	case func(func(any) bool):
		return Seq(iter.Seq[any](v)).Elements()
	case func(func([]string) bool):
		return Seq(iter.Seq[[]string](v)).Elements()
	case func(func([]any) bool):
		return Seq(iter.Seq[[]any](v)).Elements()
	case string, []byte:
		return nil, fmt.Errorf("%w, %T given", ErrInvalidInput, v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w, %T given", ErrInvalidInput, v)
}
