// Package value is the in-memory model of structured-clone data.
//
// Scalars (Undefined, Null, Bool, Int32, Uint32, Double, BigInt, String) are
// held inline. Everything with identity (objects, arrays, maps, sets, dates,
// regexps, errors, buffers, views, boxed primitives) lives in a Heap and is
// addressed by a Ref, its index in that heap:
//
//	Graph
//	├── Root  Value          scalar or Ref
//	└── Heap  []HeapObject   slot i is the object Ref(i) names
//
// Because references are indices rather than pointers, a graph may be
// cyclic or share sub-structure freely, and Clone is a slot-by-slot copy.
// Building a self-referential array looks like this:
//
//	h := value.NewHeap()
//	arr := value.NewDenseArray(value.Int32(1), value.Int32(2))
//	ref := h.Add(arr)
//	arr.Elements = append(arr.Elements, ref)
//	g := value.NewGraph(ref, h)
//
// Equal compares two graphs by structure and by topology, which is what
// round-trip tests need.
package value
