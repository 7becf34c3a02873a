// Package v8value reads and writes the binary format V8's ValueSerializer
// produces for structured clone, postMessage and IndexedDB values.
//
// Byte-for-byte compatibility with V8 is the goal: data V8 writes decodes
// here, and data written here is accepted by V8.
//
// # Architecture Overview
//
//	v8value/             Convenience Deserialize/Serialize and DisplayMode
//	├── value/           Value model: scalars, Heap of objects, Graph
//	├── backref/         Object ID tables shared by both directions
//	├── codec/           Deserializer and Serializer
//	├── convert/         Plain Go, JSON and CBOR interop
//	├── errors/          Structured error types with phase, kind and offset
//	├── internal/binary/ Varint, zigzag and double primitives
//	├── internal/tag/    Wire tag table
//	└── cmd/v8value/     decode, encode and inspect commands
//
// # Quick Start
//
//	g, err := v8value.Deserialize(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(g) // debug dump, objects labelled #N
//
//	out, err := v8value.Serialize(g)
//
// Objects live in a value.Heap and are referred to by value.Ref, so shared
// sub-structures and cycles decode to the same Ref rather than to copies.
// Serializing writes each object once and back-references the rest.
//
// # Options
//
// The package-level functions use default options. Build a
// codec.Deserializer or codec.Serializer to set a depth limit, a host
// object delegate, transferred buffers or a logger.
//
// # Thread Safety
//
// Deserializer and Serializer are safe for concurrent use. A Graph is plain
// data; share it between goroutines only for reading.
package v8value
