package value

import (
	"math"
	"slices"
)

// Graph is a decoded or hand-built value: a root and the heap that owns
// every object reachable from it.
type Graph struct {
	Root Value
	Heap *Heap
}

// NewGraph pairs a root value with its heap.
func NewGraph(root Value, heap *Heap) *Graph {
	if heap == nil {
		heap = NewHeap()
	}
	return &Graph{Root: root, Heap: heap}
}

// Scalar wraps a heap-free value in a graph.
func Scalar(v Value) *Graph {
	return NewGraph(v, nil)
}

// Children returns the values directly held by obj, in wire order. Property
// keys are included, as is the buffer of a view.
func Children(obj HeapObject) []Value {
	switch o := obj.(type) {
	case *Object:
		return propertyValues(nil, o.Properties)
	case *Array:
		out := make([]Value, 0, len(o.Elements)+2*len(o.Properties))
		for _, e := range o.Elements {
			if e != nil {
				out = append(out, e)
			}
		}
		return propertyValues(out, o.Properties)
	case *Map:
		out := make([]Value, 0, 2*len(o.Entries))
		for _, e := range o.Entries {
			out = append(out, e.Key, e.Value)
		}
		return out
	case *Set:
		return o.Values
	case *Error:
		if o.Cause != nil {
			return []Value{o.Cause}
		}
	case *ArrayBufferView:
		return []Value{o.Buffer}
	}
	return nil
}

func propertyValues(out []Value, props []Property) []Value {
	for _, p := range props {
		out = append(out, p.Key, p.Value)
	}
	return out
}

// Walk calls fn once for every object reachable from the root, in the order
// a depth-first traversal first reaches it. A non-nil error from fn stops
// the walk. Missing or unfilled slots are skipped.
func (g *Graph) Walk(fn func(ref Ref, obj HeapObject) error) error {
	seen := make(map[Ref]bool)
	stack := []Value{g.Root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ref, ok := v.(Ref)
		if !ok || seen[ref] {
			continue
		}
		seen[ref] = true
		obj := g.Heap.Lookup(ref)
		if obj == nil {
			continue
		}
		if err := fn(ref, obj); err != nil {
			return err
		}
		children := Children(obj)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

// Reachable returns the number of distinct objects reachable from the root.
func (g *Graph) Reachable() int {
	n := 0
	_ = g.Walk(func(Ref, HeapObject) error {
		n++
		return nil
	})
	return n
}

// Clone returns a deep copy. Refs are arena indices, so copying every slot
// keeps sharing and cycles intact.
func (g *Graph) Clone() *Graph {
	h := &Heap{slots: make([]HeapObject, len(g.Heap.slots))}
	for i, obj := range g.Heap.slots {
		if obj != nil {
			h.slots[i] = cloneObject(obj)
		}
	}
	return &Graph{Root: cloneValue(g.Root), Heap: h}
}

func cloneValue(v Value) Value {
	switch x := v.(type) {
	case String:
		return x.Clone()
	case BigInt:
		return BigInt{Negative: x.Negative, Words: slices.Clone(x.Words)}
	}
	return v
}

func cloneValues(vs []Value) []Value {
	if vs == nil {
		return nil
	}
	out := make([]Value, len(vs))
	for i, v := range vs {
		if v != nil {
			out[i] = cloneValue(v)
		}
	}
	return out
}

func cloneProperties(props []Property) []Property {
	if props == nil {
		return nil
	}
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = Property{Key: cloneValue(p.Key), Value: cloneValue(p.Value)}
	}
	return out
}

func cloneStringPtr(s *String) *String {
	if s == nil {
		return nil
	}
	c := s.Clone()
	return &c
}

func cloneObject(obj HeapObject) HeapObject {
	switch o := obj.(type) {
	case *Object:
		return &Object{Properties: cloneProperties(o.Properties)}
	case *Array:
		return &Array{
			Elements:   cloneValues(o.Elements),
			Properties: cloneProperties(o.Properties),
			Length:     o.Length,
			Sparse:     o.Sparse,
		}
	case *Map:
		entries := make([]Entry, len(o.Entries))
		for i, e := range o.Entries {
			entries[i] = Entry{Key: cloneValue(e.Key), Value: cloneValue(e.Value)}
		}
		return &Map{Entries: entries}
	case *Set:
		return &Set{Values: cloneValues(o.Values)}
	case *Date:
		return &Date{Time: o.Time}
	case *RegExp:
		return &RegExp{Pattern: o.Pattern.Clone(), Flags: o.Flags}
	case *Error:
		var cause Value
		if o.Cause != nil {
			cause = cloneValue(o.Cause)
		}
		return &Error{
			Name:    o.Name,
			Message: cloneStringPtr(o.Message),
			Stack:   cloneStringPtr(o.Stack),
			Cause:   cause,
		}
	case *ArrayBuffer:
		c := *o
		c.Data = slices.Clone(o.Data)
		return &c
	case *ArrayBufferView:
		c := *o
		return &c
	case *SharedArrayBuffer:
		c := *o
		return &c
	case *WasmModuleTransfer:
		c := *o
		return &c
	case *HostObject:
		return &HostObject{Payload: slices.Clone(o.Payload)}
	case *BooleanObject:
		c := *o
		return &c
	case *NumberObject:
		c := *o
		return &c
	case *BigIntObject:
		return &BigIntObject{Value: cloneValue(o.Value).(BigInt)}
	case *StringObject:
		return &StringObject{Value: o.Value.Clone()}
	}
	return obj
}

// Equal reports whether a and b are structurally equal and have the same
// topology: an object shared or cyclic in one is shared or cyclic in the
// same places in the other. NaN equals NaN; property keys compare by the
// property name they denote.
func Equal(a, b *Graph) bool {
	eq := &graphEq{
		a: a.Heap, b: b.Heap,
		fwd: make(map[Ref]Ref),
		rev: make(map[Ref]Ref),
	}
	eq.push(a.Root, b.Root)
	for len(eq.work) > 0 {
		p := eq.work[len(eq.work)-1]
		eq.work = eq.work[:len(eq.work)-1]
		if !eq.step(p[0], p[1]) {
			return false
		}
	}
	return true
}

type graphEq struct {
	a, b *Heap
	fwd  map[Ref]Ref
	rev  map[Ref]Ref
	work [][2]Value
}

func (e *graphEq) push(x, y Value) {
	e.work = append(e.work, [2]Value{x, y})
}

func (e *graphEq) step(x, y Value) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if x.Kind() != y.Kind() {
		return false
	}
	switch xv := x.(type) {
	case Undefined, Null:
		return true
	case Bool:
		return xv == y.(Bool)
	case Int32:
		return xv == y.(Int32)
	case Uint32:
		return xv == y.(Uint32)
	case Double:
		return floatEq(float64(xv), float64(y.(Double)))
	case BigInt:
		return xv.Equal(y.(BigInt))
	case String:
		return xv.Equal(y.(String))
	case Ref:
		return e.refs(xv, y.(Ref))
	}
	return false
}

func (e *graphEq) refs(x, y Ref) bool {
	if m, ok := e.fwd[x]; ok {
		return m == y
	}
	if _, ok := e.rev[y]; ok {
		return false
	}
	e.fwd[x] = y
	e.rev[y] = x

	ox, oy := e.a.Lookup(x), e.b.Lookup(y)
	if ox == nil || oy == nil {
		return ox == nil && oy == nil
	}
	return e.objects(ox, oy)
}

func (e *graphEq) keys(px, py []Property) bool {
	if len(px) != len(py) {
		return false
	}
	for i := range px {
		kx, okx := PropertyKeyString(px[i].Key)
		ky, oky := PropertyKeyString(py[i].Key)
		if !okx || !oky || kx != ky {
			return false
		}
		e.push(px[i].Value, py[i].Value)
	}
	return true
}

func (e *graphEq) objects(x, y HeapObject) bool {
	if x.Kind() != y.Kind() {
		return false
	}
	switch ox := x.(type) {
	case *Object:
		return e.keys(ox.Properties, y.(*Object).Properties)
	case *Array:
		oy := y.(*Array)
		if ox.Sparse != oy.Sparse || ox.Len() != oy.Len() || len(ox.Elements) != len(oy.Elements) {
			return false
		}
		for i := range ox.Elements {
			e.push(ox.Elements[i], oy.Elements[i])
		}
		return e.keys(ox.Properties, oy.Properties)
	case *Map:
		oy := y.(*Map)
		if len(ox.Entries) != len(oy.Entries) {
			return false
		}
		for i := range ox.Entries {
			e.push(ox.Entries[i].Key, oy.Entries[i].Key)
			e.push(ox.Entries[i].Value, oy.Entries[i].Value)
		}
		return true
	case *Set:
		oy := y.(*Set)
		if len(ox.Values) != len(oy.Values) {
			return false
		}
		for i := range ox.Values {
			e.push(ox.Values[i], oy.Values[i])
		}
		return true
	case *Date:
		return floatEq(ox.Time, y.(*Date).Time)
	case *RegExp:
		oy := y.(*RegExp)
		return ox.Flags == oy.Flags && ox.Pattern.Equal(oy.Pattern)
	case *Error:
		oy := y.(*Error)
		if ox.Name != oy.Name || !stringPtrEq(ox.Message, oy.Message) || !stringPtrEq(ox.Stack, oy.Stack) {
			return false
		}
		e.push(ox.Cause, oy.Cause)
		return true
	case *ArrayBuffer:
		oy := y.(*ArrayBuffer)
		return ox.Resizable == oy.Resizable && ox.Detached == oy.Detached &&
			(!ox.Resizable || ox.MaxByteLength == oy.MaxByteLength) &&
			slices.Equal(ox.Data, oy.Data)
	case *ArrayBufferView:
		oy := y.(*ArrayBufferView)
		if ox.Type != oy.Type || ox.ByteOffset != oy.ByteOffset || ox.Length != oy.Length ||
			ox.LengthTracking != oy.LengthTracking || ox.BackedByResizable != oy.BackedByResizable {
			return false
		}
		e.push(ox.Buffer, oy.Buffer)
		return true
	case *SharedArrayBuffer:
		return ox.TransferID == y.(*SharedArrayBuffer).TransferID
	case *WasmModuleTransfer:
		return ox.TransferID == y.(*WasmModuleTransfer).TransferID
	case *HostObject:
		return slices.Equal(ox.Payload, y.(*HostObject).Payload)
	case *BooleanObject:
		return ox.Value == y.(*BooleanObject).Value
	case *NumberObject:
		return floatEq(ox.Value, y.(*NumberObject).Value)
	case *BigIntObject:
		return ox.Value.Equal(y.(*BigIntObject).Value)
	case *StringObject:
		return ox.Value.Equal(y.(*StringObject).Value)
	}
	return false
}

func floatEq(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func stringPtrEq(a, b *String) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
