// Package codec reads and writes V8's structured-clone wire format.
//
//	┌─────────────────────────────────────────────────────────────┐
//	│ []byte ←→ [Deserializer / Serializer] ←→ *value.Graph      │
//	└─────────────────────────────────────────────────────────────┘
//
// # Wire Layout
//
// A stream is a header followed by exactly one value:
//
//	0xFF  version:varint  value
//
// Every value starts with a tag byte. Scalars carry their payload inline,
// composites bracket their children between a begin and an end tag and
// repeat the child count after the end tag:
//
//	Tag   Value             Payload
//	────────────────────────────────────────────────────────
//	'I'   Int32             zigzag varint
//	'N'   Double            8 bytes LE
//	'"'   one-byte string   len:varint, Latin-1 bytes
//	'c'   two-byte string   len:varint, UTF-16LE (even offset)
//	'o'   Object            key value ... '{' n
//	'A'   dense Array       len, elements ... '$' nprops len
//	';'   Map               k v ... ':' 2n
//	'B'   ArrayBuffer       len, bytes [ 'V' view ]
//	'^'   back-reference    object id:varint
//
// Object IDs are handed out in the order identity-bearing values begin, so
// a value may refer to a container that is still being read.
//
// # Key Types
//
//	Deserializer        - bytes to graph, one call per stream
//	Serializer          - graph to bytes, sharing preserved
//	Options             - depth limit, host objects, transferred buffers
//	HostObjectDelegate  - reads and writes embedder payloads
//
// Both Deserializer and Serializer keep per-call state only and are safe for
// concurrent use.
package codec
