package deepcopy

import (
	"reflect"

	"github.com/google/uuid"
)

// visitKey identifies an already-copied object. The type is part of the key
// because distinct pointer types may share an address (a struct and its
// first field, for example).
type visitKey struct {
	ptr uintptr
	typ reflect.Type
}

// Context carries the per-copy state of a single Copy call: the pipeline to
// resolve nested copiers from, and the table of objects copied so far.
// The visited table is what preserves shared-reference topology and breaks
// cycles: when the same pointer or map is reached twice, the second
// encounter reuses the copy made by the first.
//
// A Context is not safe for concurrent use; each Copy call creates its own.
type Context struct {
	id       string
	pipeline *Pipeline
	visited  map[visitKey]reflect.Value
}

// NewContext creates a fresh copy context bound to the pipeline.
func (p *Pipeline) NewContext() *Context {
	return &Context{
		id:       uuid.NewString(),
		pipeline: p,
		visited:  make(map[visitKey]reflect.Value),
	}
}

// ID returns the unique identifier of this copy operation, usable for
// correlating log output.
func (c *Context) ID() string {
	return c.id
}

// Pipeline returns the pipeline this context resolves copiers from.
func (c *Context) Pipeline() *Pipeline {
	return c.pipeline
}

// lookupVisited returns the copy previously recorded for the object at ptr.
func (c *Context) lookupVisited(ptr uintptr, t reflect.Type) (reflect.Value, bool) {
	v, ok := c.visited[visitKey{ptr: ptr, typ: t}]
	return v, ok
}

// rememberVisited records the copy for the object at ptr. It must be called
// before descending into the object's contents so that cycles resolve to
// the in-progress copy.
func (c *Context) rememberVisited(ptr uintptr, t reflect.Type, copy reflect.Value) {
	c.visited[visitKey{ptr: ptr, typ: t}] = copy
}

// CopyValue produces an independent copy of v using the context's pipeline.
// Interface values are unwrapped inline; every other value is dispatched to
// the copier resolved for its type.
func (c *Context) CopyValue(v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		return v, nil
	}

	// Interface values have no copier of their own; the dynamic value is
	// copied and rewrapped. Every other kind, pointers included, resolves
	// through the pipeline so the decision is cached per type.
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, nil
		}
		inner, err := c.CopyValue(v.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(inner)
		return out, nil
	}

	cp, err := c.pipeline.GetCopier(v.Type())
	if err != nil {
		return reflect.Value{}, err
	}
	return cp.Copy(c, v)
}
