package value

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SetGet(t *testing.T) {
	var o Object
	o.Set("b", 1)
	o.Set("a", 2)
	o.Set("b", 3)

	require.Equal(t, []string{"b", "a"}, o.Keys(), "replacing keeps position")
	v, ok := o.Get("b")
	require.True(t, ok)
	require.Equal(t, 3, v)

	_, ok = o.Get("missing")
	require.False(t, ok)
	require.Equal(t, 2, o.Len())
}

func TestObject_Delete(t *testing.T) {
	o := Object{{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "c", Value: 3}}

	require.True(t, o.Delete("b"))
	require.False(t, o.Delete("b"))
	require.Equal(t, []string{"a", "c"}, o.Keys())
}

type textID int

func (id textID) MarshalText() ([]byte, error) {
	return []byte("id"), nil
}

func TestKindOf(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]int
	var nilSlice []int
	n := 5

	tests := []struct {
		name string
		v    any
		want Kind
	}{
		{"nil", nil, KindNull},
		{"nil pointer", nilPtr, KindNull},
		{"nil map", nilMap, KindNull},
		{"nil slice", nilSlice, KindNull},
		{"bool", true, KindBool},
		{"int", 42, KindNumber},
		{"uint8", uint8(1), KindNumber},
		{"float", 1.5, KindNumber},
		{"json number", json.Number("12"), KindNumber},
		{"string", "x", KindString},
		{"bytes", []byte("x"), KindBytes},
		{"raw message", json.RawMessage(`{}`), KindRaw},
		{"time", time.Unix(0, 0), KindRaw},
		{"text marshaler", textID(1), KindText},
		{"slice", []int{1}, KindSequence},
		{"array", [2]int{}, KindSequence},
		{"value array", Array{1}, KindSequence},
		{"object", Object{}, KindMapping},
		{"string map", map[string]int{}, KindMapping},
		{"any-key map", map[any]int{}, KindMapping},
		{"int-key map", map[int]int{}, KindMapping},
		{"uint-key map", map[uint16]int{}, KindMapping},
		{"text-key map", map[textID]int{}, KindMapping},
		{"float-key map", map[float64]int{}, KindOpaque},
		{"struct-key map", map[struct{ A int }]int{}, KindOpaque},
		{"struct", struct{ A int }{}, KindMapping},
		{"pointer", &n, KindNumber},
		{"func", func() {}, KindOpaque},
		{"chan", make(chan int), KindOpaque},
		{"complex", complex(1, 2), KindOpaque},
		{"undefined", Undefined, KindUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.v))
		})
	}
}

func TestKindOf_SelfPointer(t *testing.T) {
	var x any
	x = &x

	assert.Equal(t, KindOpaque, KindOf(x))
}

func TestKindOfValue_Invalid(t *testing.T) {
	assert.Equal(t, KindNull, KindOfValue(reflect.Value{}))
}

func TestKind_IsContainer(t *testing.T) {
	assert.True(t, KindSequence.IsContainer())
	assert.True(t, KindMapping.IsContainer())
	assert.False(t, KindString.IsContainer())
	assert.False(t, KindOpaque.IsContainer())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Mapping", KindMapping.String())
	assert.Equal(t, "Unknown", Kind(200).String())
}
