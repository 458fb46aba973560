// Package testutil generates randomized value trees for tests and benchmarks.
package testutil

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
)

// stringAlphabet mixes plain letters with characters that need escaping.
const stringAlphabet = "abcdefghijklmnopkrstuvw\n\\\"`<>&"

// Generator builds random JSON-compatible value trees made of strings,
// numbers and nested string-keyed maps.
type Generator struct {
	rnd      *rand.Rand
	maxDepth int
}

// NewGenerator creates a deterministic generator for seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rnd:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxDepth: 6,
	}
}

// smallInt draws a small count, centred around 4.
func (g *Generator) smallInt() int {
	return g.rnd.IntN(5) + g.rnd.IntN(5)
}

// String returns a random string of at least five characters.
func (g *Generator) String() string {
	n := g.smallInt() + 5
	var sb strings.Builder
	for range n {
		sb.WriteByte(stringAlphabet[g.rnd.IntN(len(stringAlphabet))])
	}

	return sb.String()
}

// Value returns a random string, number, integer or map.
func (g *Generator) Value() any {
	return g.value(0)
}

func (g *Generator) value(depth int) any {
	choice := g.rnd.IntN(4)
	if depth >= g.maxDepth && choice == 1 {
		choice = 0
	}

	switch choice {
	case 0:
		return g.String()
	case 1:
		return g.object(depth + 1)
	case 2:
		return g.rnd.Float64()*199998 - 99999
	default:
		return g.smallInt()
	}
}

func (g *Generator) object(depth int) map[string]any {
	n := g.smallInt()
	obj := make(map[string]any, n)
	for range n {
		obj[g.String()] = g.value(depth)
	}

	return obj
}

// Sized returns a random map whose json.Marshal encoding is at least minSize bytes.
func (g *Generator) Sized(minSize int) (map[string]any, []byte) {
	root := map[string]any{}
	for {
		root[g.String()] = g.object(1)
		data, err := json.Marshal(root)
		if err != nil {
			panic(err)
		}
		if len(data) >= minSize {
			return root, data
		}
	}
}
