// Package backref tracks object identity across one decode or encode call.
//
// On decode every identity-bearing value receives the next object ID the
// moment its tag is recognized, before its contents are read, so a value can
// refer to itself. IDs are heap slots: the table allocates directly into the
// value.Heap under construction.
//
// On encode the table remembers which heap references have already been
// written and under which ID, so a second occurrence becomes a reference tag.
package backref

import (
	"github.com/wippyai/v8value/errors"
	"github.com/wippyai/v8value/value"
)

// DecodeTable assigns object IDs in allocation order while a stream is read.
type DecodeTable struct {
	heap *value.Heap
}

// NewDecodeTable creates an empty table backed by a fresh heap.
func NewDecodeTable() *DecodeTable {
	return &DecodeTable{heap: value.NewHeap()}
}

// Len returns the number of IDs allocated so far.
func (t *DecodeTable) Len() int {
	return t.heap.Len()
}

// Allocate reserves the next object ID.
func (t *DecodeTable) Allocate() uint32 {
	return uint32(t.heap.Reserve())
}

// Bind attaches the finished object to id. Binding an ID twice is a
// protocol violation.
func (t *DecodeTable) Bind(id uint32, obj value.HeapObject) error {
	if int(id) >= t.heap.Len() {
		return errors.UnknownReference(errors.PhaseDecode, errors.NoOffset, id)
	}
	if t.heap.Filled(value.Ref(id)) {
		return errors.DuplicateBinding(id)
	}
	return t.heap.Fill(value.Ref(id), obj)
}

// Add allocates an ID and binds obj to it in one step, for values that have
// no children.
func (t *DecodeTable) Add(obj value.HeapObject) value.Ref {
	return t.heap.Add(obj)
}

// Resolve returns the reference for a previously allocated id. The object
// behind it may still be under construction.
func (t *DecodeTable) Resolve(id uint32) (value.Ref, error) {
	if int(id) >= t.heap.Len() {
		return 0, errors.UnknownReference(errors.PhaseDecode, errors.NoOffset, id)
	}
	return value.Ref(id), nil
}

// Lookup returns the object bound to ref, or nil if it is not bound yet.
func (t *DecodeTable) Lookup(ref value.Ref) value.HeapObject {
	return t.heap.Lookup(ref)
}

// Finish hands over the heap. It fails if an allocated ID was never bound,
// which would leave a partially built value reachable.
func (t *DecodeTable) Finish() (*value.Heap, error) {
	if ref, ok := t.heap.Unfilled(); ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnknownReference).
			Value(uint32(ref)).
			Detail("object id %d allocated but never bound", ref).
			Build()
	}
	h := t.heap
	t.heap = nil
	return h, nil
}

// EncodeTable maps heap references to the object IDs they were written under.
type EncodeTable struct {
	ids map[value.Ref]uint32
}

// NewEncodeTable creates an empty table.
func NewEncodeTable() *EncodeTable {
	return &EncodeTable{ids: make(map[value.Ref]uint32)}
}

// Len returns the number of IDs assigned so far.
func (t *EncodeTable) Len() int {
	return len(t.ids)
}

// Track returns the existing ID of ref and seen == true if ref was already
// written. Otherwise it assigns the next ID and the caller must write the
// full body now.
func (t *EncodeTable) Track(ref value.Ref) (id uint32, seen bool) {
	if id, ok := t.ids[ref]; ok {
		return id, true
	}
	id = uint32(len(t.ids))
	t.ids[ref] = id
	return id, false
}

// Seen reports whether ref has been assigned an ID.
func (t *EncodeTable) Seen(ref value.Ref) bool {
	_, ok := t.ids[ref]
	return ok
}
