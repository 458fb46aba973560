package token

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"reflect"
	"strconv"

	"github.com/GerkinDev/jsonstream/errs"
	"github.com/GerkinDev/jsonstream/internal/options"
	"github.com/GerkinDev/jsonstream/internal/visit"
	"github.com/GerkinDev/jsonstream/value"
)

// maxQueued is the largest number of tokens a single step can produce:
// separator, key, colon and the value's first token.
const maxQueued = 4

type position uint8

const (
	posRoot position = iota
	posElement
	posMember
)

// Generator lazily produces the tokens of one value tree.
//
// The traversal is driven by an explicit stack of container frames, so each
// call to Next does a bounded amount of work and nesting depth is limited only
// by memory. A Generator is single use and not safe for concurrent use.
type Generator struct {
	root       reflect.Value
	escapeHTML bool

	started  bool
	done     bool
	err      error
	stack    []*frame
	visiting *visit.Tracker

	queue [maxQueued][]byte
	qhead int
	qlen  int

	tokens int
}

// GeneratorOption configures a Generator.
type GeneratorOption = options.Option[*Generator]

// WithEscapeHTML controls whether '<', '>' and '&' are escaped inside strings.
// It is enabled by default, matching json.Marshal.
func WithEscapeHTML(on bool) GeneratorOption {
	return options.NoError(func(g *Generator) {
		g.escapeHTML = on
	})
}

// New creates a generator for root. No work is done until the first call to Next.
//
// Parameters:
//   - root: The value tree to serialize. It must not be mutated while tokens are produced.
//   - opts: Optional configuration (see WithEscapeHTML)
//
// Returns:
//   - *Generator: The generator, positioned before the first token
//   - error: An error if an option is invalid
func New(root any, opts ...GeneratorOption) (*Generator, error) {
	g := &Generator{
		root:       reflect.ValueOf(root),
		escapeHTML: true,
		visiting:   visit.NewTracker(),
	}
	if err := options.Apply(g, opts...); err != nil {
		return nil, err
	}

	return g, nil
}

// Next returns the next token.
//
// The returned slice must not be modified; it stays valid after later calls.
// At the end of the document Next returns io.EOF. If the value tree contains a
// cycle, Next returns errs.ErrCircularDependency at the point the cycle is
// reached and keeps returning it afterwards.
func (g *Generator) Next() ([]byte, error) {
	for {
		if g.qlen > 0 {
			tok := g.queue[g.qhead]
			g.queue[g.qhead] = nil
			g.qhead++
			g.qlen--
			g.tokens++

			return tok, nil
		}
		if g.err != nil {
			return nil, g.err
		}
		if g.done {
			return nil, io.EOF
		}

		g.qhead = 0
		if err := g.step(); err != nil {
			g.fail(err)
			return nil, err
		}
	}
}

// All returns an iterator over the remaining tokens. Iteration stops after the
// last token or after yielding an error.
func (g *Generator) All() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			tok, err := g.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Tokens returns the number of tokens returned so far.
func (g *Generator) Tokens() int {
	return g.tokens
}

// Done reports whether no further tokens will be produced, either because the
// document is complete or because the traversal failed.
func (g *Generator) Done() bool {
	return g.done && g.qlen == 0
}

// Err returns the error that stopped the generator, if any.
func (g *Generator) Err() error {
	return g.err
}

// step advances the traversal by one child or one container close.
func (g *Generator) step() error {
	if !g.started {
		g.started = true
		if err := g.emit(g.root, posRoot, nil, member{}); err != nil {
			return err
		}
		if len(g.stack) == 0 {
			g.done = true
		}

		return nil
	}

	if len(g.stack) == 0 {
		g.done = true
		return nil
	}

	top := g.stack[len(g.stack)-1]
	child, ok := top.children.next()
	if !ok {
		g.stack[len(g.stack)-1] = nil
		g.stack = g.stack[:len(g.stack)-1]
		g.visiting.Leave(top.id)
		g.enqueue(top.close)
		if len(g.stack) == 0 {
			g.done = true
		}

		return nil
	}

	pos := posElement
	if top.mapping {
		pos = posMember
	}

	return g.emit(child.value, pos, top, child)
}

// emit queues the tokens that open v at pos inside parent. Containers are
// registered in the visiting set before any token is queued, so a cycle is
// reported before its key is written.
func (g *Generator) emit(v reflect.Value, pos position, parent *frame, m member) error {
	r, err := resolve(v)
	if err != nil {
		return err
	}

	switch r.kind {
	case value.KindOpaque, value.KindUndefined:
		if pos == posElement {
			g.prefix(pos, parent, m)
			g.enqueue(litNull)
		}

		return nil

	case value.KindSequence, value.KindMapping:
		if err := g.visiting.Enter(r.id); err != nil {
			return err
		}
		f, err := newFrame(r.v, r.kind, r.id)
		if err != nil {
			return err
		}
		g.prefix(pos, parent, m)
		if f.mapping {
			g.enqueue(punctOpenObj)
		} else {
			g.enqueue(punctOpenArr)
		}
		g.stack = append(g.stack, f)

		return nil
	}

	tok, ok, err := g.scalar(r)
	if err != nil {
		return err
	}
	if !ok {
		// malformed scalars degrade to opaque
		if pos == posElement {
			g.prefix(pos, parent, m)
			g.enqueue(litNull)
		}

		return nil
	}
	if m.quoted && quotable(r.kind) && !bytes.Equal(tok, litNull) {
		tok = appendQuoted(nil, string(tok), g.escapeHTML)
	}
	g.prefix(pos, parent, m)
	g.enqueue(tok)

	return nil
}

// quotable reports whether the ",string" field option applies to kind k.
// Marshaler output is never requoted.
func quotable(k value.Kind) bool {
	return k == value.KindBool || k == value.KindNumber || k == value.KindString
}

// prefix queues the separator and, for members, the key and colon.
func (g *Generator) prefix(pos position, parent *frame, m member) {
	if parent == nil {
		return
	}
	if parent.wrote {
		g.enqueue(punctComma)
	}
	parent.wrote = true
	if pos == posMember {
		g.enqueue(appendQuoted(nil, m.key, g.escapeHTML))
		g.enqueue(punctColon)
	}
}

// scalar renders a non-container value as a single token. It reports false
// for values that have no valid representation.
func (g *Generator) scalar(r resolved) ([]byte, bool, error) {
	v := r.v
	switch r.kind {
	case value.KindNull:
		return litNull, true, nil
	case value.KindBool:
		if v.Bool() {
			return litTrue, true, nil
		}

		return litFalse, true, nil
	case value.KindNumber:
		return appendNumber(v)
	case value.KindString:
		return appendQuoted(nil, v.String(), g.escapeHTML), true, nil
	case value.KindBytes:
		return appendBase64(nil, v.Bytes()), true, nil
	case value.KindRaw:
		tok, err := g.marshalJSON(v)
		return tok, err == nil, err
	case value.KindText:
		tm, _ := v.Interface().(encoding.TextMarshaler)
		text, err := tm.MarshalText()
		if err != nil {
			return nil, false, fmt.Errorf("%w: calling MarshalText for type %s: %w", errs.ErrMarshaler, v.Type(), err)
		}

		return appendQuoted(nil, string(text), g.escapeHTML), true, nil
	default:
		return nil, false, nil
	}
}

func appendNumber(v reflect.Value) ([]byte, bool, error) {
	if value.IsNumber(v.Type()) {
		s := v.String()
		if s == "" {
			return litZero, true, nil
		}
		if !isValidNumber(s) {
			return nil, false, nil
		}

		return []byte(s), true, nil
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(nil, v.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.AppendUint(nil, v.Uint(), 10), true, nil
	case reflect.Float32:
		return appendFloat(nil, v.Float(), 32), true, nil
	default:
		return appendFloat(nil, v.Float(), 64), true, nil
	}
}

// marshalJSON calls MarshalJSON and compacts its output into one token.
func (g *Generator) marshalJSON(v reflect.Value) ([]byte, error) {
	m, _ := v.Interface().(json.Marshaler)
	raw, err := m.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: calling MarshalJSON for type %s: %w", errs.ErrMarshaler, v.Type(), err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, fmt.Errorf("%w: invalid MarshalJSON output for type %s: %w", errs.ErrMarshaler, v.Type(), err)
	}
	if !g.escapeHTML {
		return compact.Bytes(), nil
	}

	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, compact.Bytes())

	return escaped.Bytes(), nil
}

func (g *Generator) enqueue(tok []byte) {
	g.queue[g.qhead+g.qlen] = tok
	g.qlen++
}

// fail stops the traversal and releases its state.
func (g *Generator) fail(err error) {
	g.err = err
	g.done = true
	clear(g.stack)
	g.stack = g.stack[:0]
	g.visiting.Reset()
	clear(g.queue[:])
	g.qhead, g.qlen = 0, 0
}
