package token

import (
	"reflect"
	"slices"
	"unsafe"

	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/internal/visit"
	"github.com/GerkinDev/jsonstream/value"
)

// resolved is a value with pointers and interfaces followed, classified, and,
// for containers that can be part of a cycle, identified.
type resolved struct {
	v    reflect.Value
	kind value.Kind
	id   visit.ID
}

// resolve follows pointers and interfaces down to a concrete value. A pointer
// chain that revisits one of its own addresses is a cycle that contains no
// container and is reported as errs.ErrCircularDependency.
func resolve(v reflect.Value) (resolved, error) {
	var id visit.ID
	var seen []unsafe.Pointer

	for v.IsValid() {
		if kind, mv, ok := marshalerOf(v); ok {
			return resolved{v: mv, kind: kind}, nil
		}

		switch v.Kind() {
		case reflect.Interface:
			if v.IsNil() {
				return resolved{kind: value.KindNull}, nil
			}
			v = v.Elem()
			id = visit.ID{}

			continue
		case reflect.Pointer:
			if v.IsNil() {
				return resolved{kind: value.KindNull}, nil
			}
			p := v.UnsafePointer()
			if slices.Contains(seen, p) {
				return resolved{}, errs.ErrCircularDependency
			}
			seen = append(seen, p)
			id = visit.NewID(p, 0, v.Type())
			v = v.Elem()

			continue
		}

		break
	}

	r := resolved{v: v, kind: value.KindOfValue(v)}
	if !r.kind.IsContainer() {
		return r, nil
	}

	switch v.Kind() {
	case reflect.Slice:
		if v.Len() > 0 {
			id = visit.NewID(v.UnsafePointer(), v.Len(), v.Type())
		}
	case reflect.Map:
		id = visit.NewID(v.UnsafePointer(), 0, v.Type())
	}
	r.id = id

	return r, nil
}

// marshalerOf reports whether v serializes through json.Marshaler or
// encoding.TextMarshaler, returning the value the method must be called on.
// Nil pointers and interfaces implementing a marshaler resolve to null.
func marshalerOf(v reflect.Value) (value.Kind, reflect.Value, bool) {
	t := v.Type()
	if kind, ok := value.MarshalerKind(t); ok {
		if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
			return value.KindNull, reflect.Value{}, true
		}
		if !v.CanInterface() {
			return 0, reflect.Value{}, false
		}

		return kind, v, true
	}

	if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface && v.CanAddr() {
		if kind, ok := value.MarshalerKind(reflect.PointerTo(t)); ok {
			pv := v.Addr()
			if pv.CanInterface() {
				return kind, pv, true
			}
		}
	}

	return 0, reflect.Value{}, false
}
