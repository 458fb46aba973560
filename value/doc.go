// Package value defines the Go-side data model accepted by the jsonstream
// serializer.
//
// Any Go value can be serialized. Beyond the builtin kinds, this package adds
// the pieces the builtin kinds cannot express:
//
//   - Object: a mapping whose members keep their insertion order. Go maps are
//     unordered and are always serialized with sorted keys.
//   - Array: a convenience alias-like type for heterogeneous sequences.
//   - Undefined: a marker for a missing value. It is dropped (with its key)
//     from mappings and serialized as null inside sequences.
//
// Values with no JSON representation (funcs, channels, complex numbers,
// unsafe pointers, maps with non-string keys) are opaque: they are dropped
// from mappings, serialized as null inside sequences, and produce no output at
// all as a top-level value.
//
// # Example
//
//	doc := value.Object{
//	    {Key: "name", Value: "sensor-1"},
//	    {Key: "readings", Value: value.Array{1.5, 2, nil}},
//	    {Key: "callback", Value: func() {}}, // opaque: omitted
//	}
//	// serializes to {"name":"sensor-1","readings":[1.5,2,null]}
package value
