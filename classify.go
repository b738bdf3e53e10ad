package deepcopy

import (
	"os"
	"reflect"
	"sync"
	"time"
)

var (
	timeTimeType        = reflect.TypeOf(time.Time{})
	timeLocationPtrType = reflect.TypeOf(time.Local)
)

// The exclusion table lists types that must never be copied: their
// instances embed identity the runtime relies on (lock state, OS handles).
// Copying a locked mutex or a process handle produces a value that lies
// about reality, so resolution routes them to the error copier instead.
var notCopyable = []reflect.Type{
	reflect.TypeOf(sync.Mutex{}),
	reflect.TypeOf(sync.RWMutex{}),
	reflect.TypeOf(sync.WaitGroup{}),
	reflect.TypeOf(sync.Once{}),
	reflect.TypeOf(sync.Cond{}),
	reflect.TypeOf(sync.Map{}),
	reflect.TypeOf((*os.Process)(nil)).Elem(),
	reflect.TypeOf((*os.File)(nil)).Elem(),
}

// Types copied by sharing the original reference. time.Time carries a
// *Location that is meant to be shared; *time.Location itself is managed
// by the runtime's zone database.
var immutable = []reflect.Type{
	timeTimeType,
	timeLocationPtrType,
}

// classifier answers the static membership questions of resolution:
// exclusion, name-table membership from bootstrap config, and whether a
// kind is an immutable scalar value. It is immutable after construction
// and therefore safe for concurrent use without locking.
type classifier struct {
	excluded       map[reflect.Type]struct{}
	excludedNames  map[string]struct{}
	immutableNames map[string]struct{}
	containerNames map[string]struct{}
}

// newClassifier builds the classifier from the built-in tables plus the
// optional bootstrap config. cfg may be nil.
func newClassifier(cfg *Config) *classifier {
	c := &classifier{
		excluded:       make(map[reflect.Type]struct{}, len(notCopyable)),
		excludedNames:  make(map[string]struct{}),
		immutableNames: make(map[string]struct{}),
		containerNames: make(map[string]struct{}),
	}
	for _, t := range notCopyable {
		c.excluded[t] = struct{}{}
	}
	if cfg != nil {
		for _, name := range cfg.NotCopyable {
			c.excludedNames[name] = struct{}{}
		}
		for _, name := range cfg.Immutable {
			c.immutableNames[name] = struct{}{}
		}
		for _, name := range cfg.Containers {
			c.containerNames[name] = struct{}{}
		}
	}
	return c
}

// isExcluded reports whether t is permanently excluded from copying.
// Exclusion wins over every other classification, including explicit
// immutable registration.
func (c *classifier) isExcluded(t reflect.Type) bool {
	if _, ok := c.excluded[t]; ok {
		return true
	}
	_, ok := c.excludedNames[t.String()]
	return ok
}

// isImmutableName reports whether t was named immutable in the bootstrap
// config.
func (c *classifier) isImmutableName(t reflect.Type) bool {
	_, ok := c.immutableNames[t.String()]
	return ok
}

// isContainerName reports whether t was named a special-cased container in
// the bootstrap config.
func (c *classifier) isContainerName(t reflect.Type) bool {
	_, ok := c.containerNames[t.String()]
	return ok
}

// isScalarKind reports whether k is a kind whose values are immutable:
// assignment is already a complete copy, so such types resolve to the
// identity copier without registration. This covers enum-style defined
// types (named integers and strings holding constants) as well as the
// predeclared scalars.
func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	}
	return false
}
