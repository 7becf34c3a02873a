// Package tag is the table of wire-format tag bytes shared by the
// deserializer, the serializer and the inspection tools.
package tag

import "fmt"

// Tag is a serialization tag byte.
type Tag byte

const (
	Version           Tag = 0xFF // version:varint
	Padding           Tag = 0x00 // ignored
	VerifyObjectCount Tag = '?'  // refTableSize:varint, ignored

	TheHole   Tag = '-'
	Undefined Tag = '_'
	Null      Tag = '0'
	True      Tag = 'T'
	False     Tag = 'F'

	Int32  Tag = 'I' // zigzag varint
	Uint32 Tag = 'U' // varint
	Double Tag = 'N' // 8 bytes little-endian
	BigInt Tag = 'Z' // bitfield:varint, digits

	UTF8String    Tag = 'S' // byteLength:varint, bytes
	OneByteString Tag = '"' // byteLength:varint, bytes
	TwoByteString Tag = 'c' // byteLength:varint, bytes (even)

	ObjectReference Tag = '^' // objectID:varint

	BeginObject      Tag = 'o'
	EndObject        Tag = '{' // numProperties:varint
	BeginSparseArray Tag = 'a' // length:varint
	EndSparseArray   Tag = '@' // numProperties:varint, length:varint
	BeginDenseArray  Tag = 'A' // length:varint
	EndDenseArray    Tag = '$' // numProperties:varint, length:varint

	Date         Tag = 'D' // millis:double
	TrueObject   Tag = 'y'
	FalseObject  Tag = 'x'
	NumberObject Tag = 'n' // double
	BigIntObject Tag = 'z' // bitfield:varint, digits
	StringObject Tag = 's' // string value
	RegExp       Tag = 'R' // pattern string, flags:varint

	BeginMap Tag = ';'
	EndMap   Tag = ':' // length:varint (2 x entries)
	BeginSet Tag = '\''
	EndSet   Tag = ',' // length:varint

	ArrayBuffer          Tag = 'B' // byteLength:varint, bytes
	ResizableArrayBuffer Tag = '~' // byteLength:varint, maxByteLength:varint, bytes
	ArrayBufferTransfer  Tag = 't' // transferID:varint
	ArrayBufferView      Tag = 'V' // subtag, byteOffset, byteLength, flags
	SharedArrayBuffer    Tag = 'u' // transferID:varint
	SharedObject         Tag = 'p' // sharedValueID:varint
	WasmModuleTransfer   Tag = 'w' // transferID:varint
	HostObject           Tag = '\\'
	WasmMemoryTransfer   Tag = 'm' // maximumPages:zigzag, then a shared buffer
	Error                Tag = 'r' // list of error subtags
)

var names = map[Tag]string{
	Version:              "Version",
	Padding:              "Padding",
	VerifyObjectCount:    "VerifyObjectCount",
	TheHole:              "TheHole",
	Undefined:            "Undefined",
	Null:                 "Null",
	True:                 "True",
	False:                "False",
	Int32:                "Int32",
	Uint32:               "Uint32",
	Double:               "Double",
	BigInt:               "BigInt",
	UTF8String:           "UTF8String",
	OneByteString:        "OneByteString",
	TwoByteString:        "TwoByteString",
	ObjectReference:      "ObjectReference",
	BeginObject:          "BeginObject",
	EndObject:            "EndObject",
	BeginSparseArray:     "BeginSparseArray",
	EndSparseArray:       "EndSparseArray",
	BeginDenseArray:      "BeginDenseArray",
	EndDenseArray:        "EndDenseArray",
	Date:                 "Date",
	TrueObject:           "TrueObject",
	FalseObject:          "FalseObject",
	NumberObject:         "NumberObject",
	BigIntObject:         "BigIntObject",
	StringObject:         "StringObject",
	RegExp:               "RegExp",
	BeginMap:             "BeginMap",
	EndMap:               "EndMap",
	BeginSet:             "BeginSet",
	EndSet:               "EndSet",
	ArrayBuffer:          "ArrayBuffer",
	ResizableArrayBuffer: "ResizableArrayBuffer",
	ArrayBufferTransfer:  "ArrayBufferTransfer",
	ArrayBufferView:      "ArrayBufferView",
	SharedArrayBuffer:    "SharedArrayBuffer",
	SharedObject:         "SharedObject",
	WasmModuleTransfer:   "WasmModuleTransfer",
	HostObject:           "HostObject",
	WasmMemoryTransfer:   "WasmMemoryTransfer",
	Error:                "Error",
}

// Known reports whether t is a tag of the wire format.
func Known(t Tag) bool {
	_, ok := names[t]
	return ok
}

func (t Tag) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("Tag(0x%02x)", byte(t))
}

// ViewTag is the subtag of an ArrayBufferView record.
type ViewTag byte

const (
	ViewInt8         ViewTag = 'b'
	ViewUint8        ViewTag = 'B'
	ViewUint8Clamped ViewTag = 'C'
	ViewInt16        ViewTag = 'w'
	ViewUint16       ViewTag = 'W'
	ViewInt32        ViewTag = 'd'
	ViewUint32       ViewTag = 'D'
	ViewFloat32      ViewTag = 'f'
	ViewFloat64      ViewTag = 'F'
	ViewBigInt64     ViewTag = 'q'
	ViewBigUint64    ViewTag = 'Q'
	ViewDataView     ViewTag = '?'
)

// View flag bits, present from wire version 14.
const (
	ViewFlagLengthTracking    uint32 = 1 << 0
	ViewFlagBackedByResizable uint32 = 1 << 1
)

// ErrorTag is a subtag inside an Error record.
type ErrorTag byte

const (
	ErrorEvalPrototype      ErrorTag = 'E'
	ErrorRangePrototype     ErrorTag = 'R'
	ErrorReferencePrototype ErrorTag = 'F'
	ErrorSyntaxPrototype    ErrorTag = 'S'
	ErrorTypePrototype      ErrorTag = 'T'
	ErrorURIPrototype       ErrorTag = 'U'
	ErrorMessage            ErrorTag = 'm' // followed by a string
	ErrorCause              ErrorTag = 'c' // followed by a value
	ErrorStack              ErrorTag = 's' // followed by a string
	ErrorEnd                ErrorTag = '.'
)

// BigInt bitfield layout.
const (
	BigIntSignMask       uint32 = 1
	BigIntByteLengthMask uint32 = 0x7FFFFFFE
)

// Wire format versions.
const (
	MinVersion     uint32 = 13
	MaxVersion     uint32 = 15
	CurrentVersion uint32 = 15

	// ViewFlagsVersion is the first version whose views carry a flags varint.
	ViewFlagsVersion uint32 = 14
)
