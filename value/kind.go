package value

import (
	"encoding"
	"encoding/json"
	"reflect"
)

// Kind classifies a Go value by the way it is serialized.
type Kind uint8

const (
	KindNull      Kind = iota // KindNull serializes as null.
	KindBool                  // KindBool serializes as true or false.
	KindNumber                // KindNumber serializes as a JSON number.
	KindString                // KindString serializes as a quoted string.
	KindBytes                 // KindBytes serializes as a quoted base64 string.
	KindRaw                   // KindRaw serializes through json.Marshaler.
	KindText                  // KindText serializes through encoding.TextMarshaler as a string.
	KindSequence              // KindSequence serializes as an array.
	KindMapping               // KindMapping serializes as an object.
	KindOpaque                // KindOpaque has no representation.
	KindUndefined             // KindUndefined is the missing-value marker.
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindRaw:
		return "Raw"
	case KindText:
		return "Text"
	case KindSequence:
		return "Sequence"
	case KindMapping:
		return "Mapping"
	case KindOpaque:
		return "Opaque"
	case KindUndefined:
		return "Undefined"
	default:
		return "Unknown"
	}
}

// IsContainer reports whether values of kind k hold child values.
func (k Kind) IsContainer() bool {
	return k == KindSequence || k == KindMapping
}

var (
	undefinedType     = reflect.TypeFor[UndefinedType]()
	objectType        = reflect.TypeFor[Object]()
	numberType        = reflect.TypeFor[json.Number]()
	marshalerType     = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// IsObject reports whether t is the ordered Object type.
func IsObject(t reflect.Type) bool {
	return t == objectType
}

// IsNumber reports whether t is json.Number.
func IsNumber(t reflect.Type) bool {
	return t == numberType
}

// MarshalerKind reports whether t serializes through a marshaler interface,
// returning KindRaw for json.Marshaler and KindText for encoding.TextMarshaler.
// json.Marshaler takes precedence, as in encoding/json.
func MarshalerKind(t reflect.Type) (Kind, bool) {
	if t.Implements(marshalerType) {
		return KindRaw, true
	}
	if t.Implements(textMarshalerType) {
		return KindText, true
	}

	return 0, false
}

// KindOf classifies v after following pointers and interfaces.
// Pointer chains that loop back on themselves are reported as KindOpaque.
func KindOf(v any) Kind {
	rv := reflect.ValueOf(v)
	for hops := 0; rv.IsValid(); hops++ {
		if k, ok := MarshalerKind(rv.Type()); ok {
			if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
				return KindNull
			}

			return k
		}
		if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface {
			break
		}
		if rv.IsNil() {
			return KindNull
		}
		if hops > 64 {
			return KindOpaque
		}
		rv = rv.Elem()
	}

	return KindOfValue(rv)
}

// KindOfValue classifies a value that is neither a pointer nor an interface.
// Marshaler implementations are not considered; see MarshalerKind.
func KindOfValue(rv reflect.Value) Kind {
	if !rv.IsValid() {
		return KindNull
	}

	t := rv.Type()
	switch {
	case t == undefinedType:
		return KindUndefined
	case t == objectType:
		if rv.IsNil() {
			return KindNull
		}

		return KindMapping
	case t == numberType:
		return KindNumber
	}

	switch rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.String:
		return KindString
	case reflect.Slice:
		if rv.IsNil() {
			return KindNull
		}
		if t.Elem().Kind() == reflect.Uint8 {
			if _, ok := MarshalerKind(reflect.PointerTo(t.Elem())); !ok {
				return KindBytes
			}
		}

		return KindSequence
	case reflect.Array:
		return KindSequence
	case reflect.Map:
		if !IsMapKey(t.Key()) && t.Key().Kind() != reflect.Interface {
			return KindOpaque
		}
		if rv.IsNil() {
			return KindNull
		}

		return KindMapping
	case reflect.Struct:
		return KindMapping
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
		if !rv.CanInterface() {
			return KindOpaque
		}

		return KindOf(rv.Interface())
	default:
		// Complex, Chan, Func, UnsafePointer
		return KindOpaque
	}
}

// IsMapKey reports whether map keys of type t have a string form: string and
// integer kinds, and types implementing encoding.TextMarshaler.
func IsMapKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}

	return t.Implements(textMarshalerType)
}
