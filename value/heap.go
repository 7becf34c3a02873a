package value

import (
	"github.com/wippyai/v8value/errors"
)

// Heap is the arena owning every HeapObject of one graph. A Ref is an index
// into it. Slots may be reserved before they are filled so that an object
// can refer to itself while it is being built.
type Heap struct {
	slots []HeapObject
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Len returns the number of slots, filled or reserved.
func (h *Heap) Len() int {
	return len(h.slots)
}

// Reserve appends an empty slot and returns its Ref.
func (h *Heap) Reserve() Ref {
	ref := Ref(len(h.slots))
	h.slots = append(h.slots, nil)
	return ref
}

// Fill stores obj in a reserved slot. A slot can be filled once.
func (h *Heap) Fill(ref Ref, obj HeapObject) error {
	if int(ref) >= len(h.slots) {
		return errors.UnknownReference(errors.PhaseValidate, errors.NoOffset, uint32(ref))
	}
	if obj == nil {
		return errors.InvalidData(errors.PhaseValidate, errors.NoOffset, "nil heap object")
	}
	if h.slots[ref] != nil {
		return errors.New(errors.PhaseValidate, errors.KindDuplicateBinding).
			Value(uint32(ref)).
			Detail("heap slot %d already filled", ref).
			Build()
	}
	h.slots[ref] = obj
	return nil
}

// Add appends obj in a new slot and returns its Ref.
func (h *Heap) Add(obj HeapObject) Ref {
	ref := Ref(len(h.slots))
	h.slots = append(h.slots, obj)
	return ref
}

// Filled reports whether ref names a slot holding an object.
func (h *Heap) Filled(ref Ref) bool {
	return int(ref) < len(h.slots) && h.slots[ref] != nil
}

// Lookup returns the object at ref, or nil when the slot is missing or empty.
func (h *Heap) Lookup(ref Ref) HeapObject {
	if int(ref) >= len(h.slots) {
		return nil
	}
	return h.slots[ref]
}

// Get returns the object at ref.
func (h *Heap) Get(ref Ref) (HeapObject, error) {
	if int(ref) >= len(h.slots) {
		return nil, errors.UnknownReference(errors.PhaseValidate, errors.NoOffset, uint32(ref))
	}
	obj := h.slots[ref]
	if obj == nil {
		return nil, errors.New(errors.PhaseValidate, errors.KindUnknownReference).
			Value(uint32(ref)).
			Detail("heap slot %d reserved but never filled", ref).
			Build()
	}
	return obj, nil
}

// Unfilled returns the first reserved slot that was never filled.
func (h *Heap) Unfilled() (Ref, bool) {
	for i, obj := range h.slots {
		if obj == nil {
			return Ref(i), true
		}
	}
	return 0, false
}
