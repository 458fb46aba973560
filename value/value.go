package value

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is an insertion-ordered mapping. Keys are expected to be unique; the
// serializer emits members exactly as stored, without de-duplication.
type Object []Member

// Array is an ordered sequence of arbitrary values.
type Array []any

// UndefinedType is the type of the Undefined marker.
type UndefinedType struct{}

// Undefined marks a missing value.
var Undefined UndefinedType

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}

	return nil, false
}

// Set replaces the value stored under key, or appends a new member when the key
// is absent. Replacing keeps the member at its original position.
func (o *Object) Set(key string, v any) {
	for i := range *o {
		if (*o)[i].Key == key {
			(*o)[i].Value = v
			return
		}
	}
	*o = append(*o, Member{Key: key, Value: v})
}

// Delete removes the member stored under key and reports whether it existed.
func (o *Object) Delete(key string) bool {
	for i := range *o {
		if (*o)[i].Key == key {
			*o = append((*o)[:i], (*o)[i+1:]...)
			return true
		}
	}

	return false
}

// Keys returns the member keys in insertion order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}

	return keys
}

// Len returns the number of members.
func (o Object) Len() int {
	return len(o)
}
