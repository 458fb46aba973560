package input

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/GerkinDev/jsonstream/value"
)

func TestDecode_KeepsKeyOrder(t *testing.T) {
	v, err := DecodeBytes([]byte("zeta: 1\nalpha: two\nmid:\n  - true\n  - null\n  - 1.5\n"))
	require.NoError(t, err)

	obj, ok := v.(value.Object)
	require.True(t, ok)
	require.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	got, ok := obj.Get("mid")
	require.True(t, ok)
	require.Equal(t, []any{true, nil, 1.5}, got)

	got, _ = obj.Get("zeta")
	require.Equal(t, 1, got)
}

func TestDecode_JSON(t *testing.T) {
	v, err := Decode(strings.NewReader(`{"b": [1, "x", {"c": null}], "a": {}}`))
	require.NoError(t, err)

	require.Equal(t, value.Object{
		{Key: "b", Value: []any{1, "x", value.Object{{Key: "c", Value: nil}}}},
		{Key: "a", Value: value.Object{}},
	}, v)
}

func TestDecode_ScalarKeys(t *testing.T) {
	v, err := DecodeBytes([]byte("1: one\ntrue: yes\n? [complex]\n: dropped\n"))
	require.NoError(t, err)

	obj := v.(value.Object)
	require.Equal(t, []string{"1", "true"}, obj.Keys())
}

func TestDecode_DuplicateKeys(t *testing.T) {
	node := mustParse(t, "a: 1\nb: 2\n")
	// yaml.v3 rejects duplicate keys when parsing, so build one by hand
	mapping := node.Content[0]
	mapping.Content = append(mapping.Content, mapping.Content[0], mapping.Content[3])

	v, err := FromNode(node)
	require.NoError(t, err)
	require.Equal(t, value.Object{{Key: "a", Value: 2}, {Key: "b", Value: 2}}, v)
}

func TestDecode_AliasesShareValues(t *testing.T) {
	v, err := DecodeBytes([]byte("base: &b\n  x: 1\ncopy: *b\nlist: &l [1, 2]\nagain: *l\n"))
	require.NoError(t, err)

	obj := v.(value.Object)
	base, _ := obj.Get("base")
	cp, _ := obj.Get("copy")
	require.Equal(t, base, cp)

	l1, _ := obj.Get("list")
	l2, _ := obj.Get("again")
	require.Same(t, &l1.([]any)[0], &l2.([]any)[0])
}

func TestDecode_Merge(t *testing.T) {
	doc := `
defaults: &d
  a: 1
  b: 2
extra: &e
  c: 3
item:
  b: 20
  <<: [*d, *e]
  z: 26
`
	v, err := DecodeBytes([]byte(doc))
	require.NoError(t, err)

	item, _ := v.(value.Object).Get("item")
	require.Equal(t, value.Object{
		{Key: "b", Value: 20},
		{Key: "a", Value: 1},
		{Key: "c", Value: 3},
		{Key: "z", Value: 26},
	}, item)
}

func TestDecode_RecursiveAnchor(t *testing.T) {
	v, err := DecodeBytes([]byte("&a [1, *a]"))
	require.NoError(t, err)

	list := v.([]any)
	require.Len(t, list, 2)
	inner := list[1].([]any)
	require.Same(t, &list[0], &inner[0])

	_, err = json.Marshal(v)
	require.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	_, err := DecodeBytes(nil)
	require.ErrorIs(t, err, ErrEmptyDocument)

	_, err = DecodeBytes([]byte("# only a comment\n"))
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := DecodeBytes([]byte("a: [1, 2"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing document")
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("k: v\n"), 0o600))

	v, err := DecodeFile(path)
	require.NoError(t, err)
	require.Equal(t, value.Object{{Key: "k", Value: "v"}}, v)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func mustParse(t *testing.T, doc string) *yaml.Node {
	t.Helper()

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(doc), &node))

	return &node
}
