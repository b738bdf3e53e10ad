package deepcopy

import "errors"

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("deepcopy: nil reflect.Type provided")

	// ErrInterfaceNotCopyable is returned when a copier is requested for an
	// interface type. Interface types have no storage layout of their own;
	// copiers are resolved for the dynamic type of a value instead.
	ErrInterfaceNotCopyable = errors.New("deepcopy: cannot copy interface type")

	// ErrNoCopier is returned when the resolution chain is exhausted without
	// producing a copier. The ordinary factory is a catch-all for composite
	// types, so this indicates a configuration gap rather than a normal
	// runtime condition.
	ErrNoCopier = errors.New("deepcopy: no copier found for type")

	// ErrNotCopyable is returned when a type is permanently classified as
	// non-copyable, either through the built-in exclusion table, a bootstrap
	// config entry, or a factory that produced the error copier.
	ErrNotCopyable = errors.New("deepcopy: type is not copyable")
)
