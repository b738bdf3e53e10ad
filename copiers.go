package deepcopy

import (
	"fmt"
	"reflect"
)

// identityCopier returns the original value unchanged. Used for immutable
// and inherently shareable types.
type identityCopier struct{}

func (identityCopier) Copy(_ *Context, v reflect.Value) (reflect.Value, error) {
	return v, nil
}

// errorCopier rejects every copy attempt. It is cached like any other
// copier so that the cost of discovering a non-copyable type is paid once;
// the pipeline recognizes it by identity when surfacing ErrNotCopyable.
type errorCopier struct{}

func (*errorCopier) Copy(_ *Context, v reflect.Value) (reflect.Value, error) {
	return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotCopyable, v.Type())
}

// mapCopier is the container-special strategy. Maps cannot go through the
// generic struct walk: their buckets are runtime-internal, and
// self-referential map types would recurse without bound. Entries are
// copied key and value alike, and the new map is recorded in the visited
// table before descending so that a map reachable from its own values
// resolves to the copy in progress.
type mapCopier struct{}

func (mapCopier) Copy(ctx *Context, v reflect.Value) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	if prev, ok := ctx.lookupVisited(v.Pointer(), v.Type()); ok {
		return prev, nil
	}

	out := reflect.MakeMapWithSize(v.Type(), v.Len())
	ctx.rememberVisited(v.Pointer(), v.Type(), out)

	iter := v.MapRange()
	for iter.Next() {
		kc, err := ctx.CopyValue(iter.Key())
		if err != nil {
			return reflect.Value{}, err
		}
		vc, err := ctx.CopyValue(iter.Value())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(kc, vc)
	}
	return out, nil
}

// sliceCopier is the reflective strategy for array-shaped storage: slices
// and fixed-size arrays, copied element by element.
type sliceCopier struct{}

func (sliceCopier) Copy(ctx *Context, v reflect.Value) (reflect.Value, error) {
	t := v.Type()

	if t.Kind() == reflect.Slice {
		if v.IsNil() {
			return v, nil
		}
		out := reflect.MakeSlice(t, v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			ec, err := ctx.CopyValue(v.Index(i))
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ec)
		}
		return out, nil
	}

	out := reflect.New(t).Elem()
	for i := 0; i < v.Len(); i++ {
		ec, err := ctx.CopyValue(v.Index(i))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(ec)
	}
	return out, nil
}

// structCopier is the reflective strategy for ordinary composite types,
// copying declared fields one by one. The copy starts as a shallow
// assignment so unexported fields carry over, then every settable field is
// replaced with its deep copy. Unexported fields therefore remain shallow;
// types where that matters should be registered immutable or routed
// through the special factory.
type structCopier struct{}

func (structCopier) Copy(ctx *Context, v reflect.Value) (reflect.Value, error) {
	t := v.Type()
	out := reflect.New(t).Elem()
	out.Set(v)

	for i := 0; i < t.NumField(); i++ {
		f := out.Field(i)
		if !f.CanSet() {
			continue
		}
		fc, err := ctx.CopyValue(v.Field(i))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s.%s: %w", t, t.Field(i).Name, err)
		}
		if fc.IsValid() {
			f.Set(fc)
		}
	}
	return out, nil
}

// pointerCopier handles pointer-kinded types resolved directly through
// GetCopier (Context.CopyValue normally dereferences pointers before
// resolution, but callers may request a copier for a pointer type).
type pointerCopier struct{}

func (pointerCopier) Copy(ctx *Context, v reflect.Value) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	if prev, ok := ctx.lookupVisited(v.Pointer(), v.Type()); ok {
		return prev, nil
	}
	out := reflect.New(v.Type().Elem())
	ctx.rememberVisited(v.Pointer(), v.Type(), out)
	elemCopy, err := ctx.CopyValue(v.Elem())
	if err != nil {
		return reflect.Value{}, err
	}
	out.Elem().Set(elemCopy)
	return out, nil
}
