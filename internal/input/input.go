// Package input decodes YAML or JSON documents into value trees suitable for
// streaming.
//
// Mappings become value.Object so the document's key order is kept in the
// output. Anchored nodes are decoded once and every alias shares the result,
// which means a YAML document whose alias points back at one of its own
// ancestors yields a genuinely circular value.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GerkinDev/jsonstream/value"
)

// ErrEmptyDocument is returned when the input holds no document.
var ErrEmptyDocument = errors.New("input contains no document")

const mergeTag = "!!merge"

// Decode reads the first document from r.
func Decode(r io.Reader) (any, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}

		return nil, fmt.Errorf("parsing document: %w", err)
	}

	return FromNode(&root)
}

// DecodeBytes decodes the first document in data.
func DecodeBytes(data []byte) (any, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeFile decodes the first document of the file at path.
func DecodeFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// FromNode converts a parsed YAML node into a value tree.
func FromNode(node *yaml.Node) (any, error) {
	d := &decoder{anchors: make(map[*yaml.Node]any)}

	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, ErrEmptyDocument
		}
		node = node.Content[0]
	}

	return d.decode(node)
}

type pair struct {
	key   string
	value *yaml.Node
}

type decoder struct {
	// anchors holds the decoded value of every anchored node seen so far.
	anchors map[*yaml.Node]any
}

func (d *decoder) decode(node *yaml.Node) (any, error) {
	if v, ok := d.anchors[node]; ok {
		return v, nil
	}

	switch node.Kind {
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, nil
		}

		return d.decode(node.Alias)

	case yaml.MappingNode:
		pairs := d.pairs(node, map[*yaml.Node]bool{})
		obj := make(value.Object, len(pairs))
		d.remember(node, obj)

		for i, p := range pairs {
			v, err := d.decode(p.value)
			if err != nil {
				return nil, err
			}
			obj[i] = value.Member{Key: p.key, Value: v}
		}

		return obj, nil

	case yaml.SequenceNode:
		list := make([]any, len(node.Content))
		d.remember(node, list)

		for i, child := range node.Content {
			v, err := d.decode(child)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}

		return list, nil

	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			v = node.Value
		}
		d.remember(node, v)

		return v, nil

	default:
		return nil, fmt.Errorf("unexpected YAML node kind %d at line %d", node.Kind, node.Line)
	}
}

// remember records containers before their children are decoded, so aliases
// to an enclosing anchor resolve to the container itself.
func (d *decoder) remember(node *yaml.Node, v any) {
	if node.Anchor != "" {
		d.anchors[node] = v
	}
}

// pairs flattens the members of a mapping node in document order. Merge keys
// ("<<") are replaced by the members of the merged mappings that are not
// defined explicitly. A repeated key keeps its first position and last value.
func (d *decoder) pairs(node *yaml.Node, merging map[*yaml.Node]bool) []pair {
	merging[node] = true
	defer delete(merging, node)

	explicit := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if k := node.Content[i]; k.Kind == yaml.ScalarNode && k.ShortTag() != mergeTag {
			explicit[k.Value] = true
		}
	}

	out := make([]pair, 0, len(node.Content)/2)
	index := make(map[string]int, len(node.Content)/2)
	add := func(p pair, override bool) {
		if i, ok := index[p.key]; ok {
			if override {
				out[i].value = p.value
			}

			return
		}
		index[p.key] = len(out)
		out = append(out, p)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		switch {
		case k.Kind == yaml.ScalarNode && k.ShortTag() == mergeTag:
			for _, src := range mergeSources(v) {
				if merging[src] {
					continue
				}
				for _, p := range d.pairs(src, merging) {
					if !explicit[p.key] {
						add(p, false)
					}
				}
			}
		case k.Kind == yaml.ScalarNode:
			add(pair{key: k.Value, value: v}, true)
		default:
			// complex keys have no JSON representation
		}
	}

	return out
}

// mergeSources returns the mappings referenced by the value of a merge key.
func mergeSources(v *yaml.Node) []*yaml.Node {
	v = resolveAlias(v)
	switch v.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{v}
	case yaml.SequenceNode:
		out := make([]*yaml.Node, 0, len(v.Content))
		for _, item := range v.Content {
			if item = resolveAlias(item); item.Kind == yaml.MappingNode {
				out = append(out, item)
			}
		}

		return out
	default:
		return nil
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}

	return n
}
