// Package token turns a Go value tree into the ordered sequence of JSON text
// fragments ("tokens") whose concatenation is the encoding/json serialization
// of that tree.
//
// # Overview
//
// A Generator walks the tree depth-first and produces one token per call to
// Next: a punctuation character, a quoted string, a number or boolean literal,
// or null. It never holds more than the current path of open containers plus
// a handful of queued tokens, so arbitrarily large documents can be produced
// without materializing them.
//
//	g, _ := token.New(map[string]any{"foo": []any{1, "bar"}})
//	for tok, err := range g.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Printf("%s ", tok) // { "foo" : [ 1 , "bar" ] }
//	}
//
// # Cycles
//
// Containers (slices, maps, value.Object, and structs reached through a
// pointer) are tracked by address while they are open. Reaching an open
// container again returns errs.ErrCircularDependency and stops the generator.
// The same container reachable through two separate paths is not a cycle and
// is serialized at both positions.
//
// # Values without a representation
//
// Opaque values (funcs, channels, complex numbers, malformed json.Number) and
// value.Undefined are dropped together with their key inside mappings,
// serialized as null inside sequences, and produce no tokens at the top level.
// NaN and infinities are serialized as null.
package token
