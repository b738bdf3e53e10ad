package deepcopy

import (
	"reflect"
	"sync"
)

var (
	defaultOnce     sync.Once
	defaultPipeline *Pipeline
)

// Default returns the package-level pipeline, creating it on first use.
// It is shared by the package-level convenience functions and by any
// consumer that does not construct its own Pipeline.
func Default() *Pipeline {
	defaultOnce.Do(func() {
		defaultPipeline = New()
	})
	return defaultPipeline
}

// Copy produces a deep copy of v using the package-level pipeline.
// Shared references within v's object graph stay shared in the copy, and
// cyclic graphs are handled. Types classified as non-copyable surface
// ErrNotCopyable.
func Copy[T any](v T) (T, error) {
	out, err := Default().Copy(v)
	if err != nil {
		var zero T
		return zero, err
	}
	if out == nil {
		var zero T
		return zero, nil
	}
	return out.(T), nil
}

// MustCopy is like Copy but panics on error. Intended for values the
// caller knows to be copyable, such as plain data structs.
func MustCopy[T any](v T) T {
	out, err := Copy(v)
	if err != nil {
		panic(err)
	}
	return out
}

// RegisterImmutable binds t to the identity copier on the package-level
// pipeline.
func RegisterImmutable(t reflect.Type) error {
	return Default().RegisterImmutable(t)
}

// RegisterImmutableType is a generic convenience for RegisterImmutable.
func RegisterImmutableType[T any]() error {
	return Default().RegisterImmutable(TypeOf[T]())
}

// TypeOf returns the reflect.Type of T without needing a value of T.
// Unlike reflect.TypeOf on a value, it works for interface types too.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
