package token

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/internal/visit"
	"github.com/GerkinDev/jsonstream/value"
)

// member is one child produced by a container frame.
type member struct {
	key    string
	value  reflect.Value
	quoted bool
}

// children yields the members of one container in serialization order.
type children interface {
	next() (member, bool)
}

// frame is a container being traversed: its remaining children, the identity
// registered in the visiting set, and whether a child was already written.
type frame struct {
	children children
	id       visit.ID
	close    []byte
	mapping  bool
	wrote    bool
}

// sequenceChildren walks slices and arrays by index.
type sequenceChildren struct {
	v reflect.Value
	i int
}

func (c *sequenceChildren) next() (member, bool) {
	if c.i >= c.v.Len() {
		return member{}, false
	}
	m := member{value: c.v.Index(c.i)}
	c.i++

	return m, true
}

// objectChildren walks a value.Object in insertion order.
type objectChildren struct {
	v reflect.Value
	i int
}

func (c *objectChildren) next() (member, bool) {
	if c.i >= c.v.Len() {
		return member{}, false
	}
	entry := c.v.Index(c.i)
	c.i++

	return member{key: entry.Field(0).String(), value: entry.Field(1)}, true
}

// mapChildren walks a Go map in the order of its resolved key strings. Keys
// without a string form are skipped.
type mapChildren struct {
	v    reflect.Value
	keys []mapKey
	i    int
}

type mapKey struct {
	name string
	k    reflect.Value
}

func newMapChildren(v reflect.Value) (*mapChildren, error) {
	keys := make([]mapKey, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		name, ok, err := resolveKeyName(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		keys = append(keys, mapKey{name: name, k: k})
	}
	slices.SortFunc(keys, func(a, b mapKey) int {
		return strings.Compare(a.name, b.name)
	})

	return &mapChildren{v: v, keys: keys}, nil
}

func (c *mapChildren) next() (member, bool) {
	if c.i >= len(c.keys) {
		return member{}, false
	}
	k := c.keys[c.i]
	c.i++

	return member{key: k.name, value: c.v.MapIndex(k.k)}, true
}

// resolveKeyName returns the object key for map key k. String kinds win over
// encoding.TextMarshaler, which wins over the decimal form of integers.
func resolveKeyName(k reflect.Value) (string, bool, error) {
	if k.Kind() == reflect.Interface {
		// dynamic keys count only when they are strings
		if k.IsNil() || k.Elem().Kind() != reflect.String {
			return "", false, nil
		}

		return k.Elem().String(), true, nil
	}
	if k.Kind() == reflect.String {
		return k.String(), true, nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", true, nil
		}
		text, err := tm.MarshalText()
		if err != nil {
			return "", false, fmt.Errorf("%w: calling MarshalText for map key type %s: %w", errs.ErrMarshaler, k.Type(), err)
		}

		return string(text), true, nil
	}

	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true, nil
	default:
		return strconv.FormatUint(k.Uint(), 10), true, nil
	}
}

// structChildren walks the serialized fields of a struct, applying the
// omitempty and omitzero options.
type structChildren struct {
	v      reflect.Value
	fields []field
	i      int
}

func (c *structChildren) next() (member, bool) {
	for c.i < len(c.fields) {
		f := c.fields[c.i]
		c.i++

		fv, ok := fieldByIndex(c.v, f.index)
		if !ok {
			continue
		}
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		if f.omitZero && isZeroValue(fv) {
			continue
		}

		return member{key: f.name, value: fv, quoted: f.quoted}, true
	}

	return member{}, false
}

// newFrame builds the frame for a container value of the given kind.
func newFrame(v reflect.Value, kind value.Kind, id visit.ID) (*frame, error) {
	if kind == value.KindSequence {
		return &frame{
			children: &sequenceChildren{v: v},
			id:       id,
			close:    punctCloseArr,
		}, nil
	}

	f := &frame{id: id, close: punctCloseObj, mapping: true}
	switch {
	case value.IsObject(v.Type()):
		f.children = &objectChildren{v: v}
	case v.Kind() == reflect.Map:
		mc, err := newMapChildren(v)
		if err != nil {
			return nil, err
		}
		f.children = mc
	default:
		f.children = &structChildren{v: v, fields: cachedFields(v.Type())}
	}

	return f, nil
}
