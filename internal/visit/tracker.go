// Package visit tracks the containers on the active traversal path of a
// serialization so that structural cycles can be reported instead of followed.
package visit

import (
	"reflect"
	"unsafe"

	"github.com/GerkinDev/jsonstream/errs"
)

// ID identifies a container by address, never by content. Slices also carry
// their length so two slices sharing a backing array but covering different
// ranges are distinct containers, and the type keeps a struct apart from its
// first field, which lives at the same address.
type ID struct {
	ptr unsafe.Pointer
	len int
	typ reflect.Type
}

// NewID builds an ID from a container address, its length (slices only) and
// the type through which it is reached.
func NewID(ptr unsafe.Pointer, length int, typ reflect.Type) ID {
	return ID{ptr: ptr, len: length, typ: typ}
}

// IsZero reports whether id carries no address. Such containers cannot
// participate in a cycle and are never tracked.
func (id ID) IsZero() bool {
	return id.ptr == nil
}

// Tracker is the set of containers currently being traversed.
// A container is entered when its opening token is produced and left after its
// closing token, so shared but acyclic references are accepted.
type Tracker struct {
	active map[ID]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		active: make(map[ID]struct{}),
	}
}

// Enter registers id as being on the active path.
// Returns errs.ErrCircularDependency if id is already on the path.
func (t *Tracker) Enter(id ID) error {
	if !id.IsZero() {
		if _, exists := t.active[id]; exists {
			return errs.ErrCircularDependency
		}
		t.active[id] = struct{}{}
	}

	return nil
}

// Leave removes id from the active path.
func (t *Tracker) Leave(id ID) {
	if !id.IsZero() {
		delete(t.active, id)
	}
}

// Reset clears the tracker so it can serve another traversal.
func (t *Tracker) Reset() {
	clear(t.active)
}
