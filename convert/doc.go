// Package convert maps value graphs to and from plain Go data, JSON and CBOR.
//
// The mapping is lossy in the direction of the interop format: JSON and CBOR
// have no undefined, no shared references and no typed binary views. It is
// meant for inspecting decoded payloads and for building graphs from
// configuration or fixtures.
//
//	value.Graph ──ToGo──▶ any ──jsoniter / cbor──▶ []byte
//	value.Graph ◀─FromGo── any ◀─FromJSON / FromCBOR── []byte
//
// Objects become *OrderedMap so JSON output keeps property order. Cycles
// cannot be expressed and fail with invalid_data; shared sub-graphs that do
// not form a cycle are duplicated.
package convert
