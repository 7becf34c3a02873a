package value

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HeapObject is a composite or identity-bearing value owned by a Heap.
type HeapObject interface {
	Kind() Kind
	isHeapObject()
}

// Property is one key/value pair of an object or of an array's extra
// properties. Key is an Int32, Uint32, Double or String.
type Property struct {
	Key   Value
	Value Value
}

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   Value
	Value Value
}

// Object is a plain JS object with properties in insertion order.
type Object struct {
	Properties []Property
}

// Array is a JS array. A dense array keeps one slot per index in Elements,
// a nil slot being a hole. A sparse array keeps its indexed entries in
// Properties and only declares Length.
type Array struct {
	Elements   []Value
	Properties []Property
	Length     uint32
	Sparse     bool
}

// NewDenseArray creates a dense array holding elems.
func NewDenseArray(elems ...Value) *Array {
	return &Array{Elements: elems, Length: uint32(len(elems))}
}

// NewSparseArray creates a sparse array of the given length.
func NewSparseArray(length uint32, props ...Property) *Array {
	return &Array{Sparse: true, Length: length, Properties: props}
}

// Len returns the JS length of the array.
func (a *Array) Len() uint32 {
	if a.Sparse {
		return a.Length
	}
	return uint32(len(a.Elements))
}

// Map is a JS Map with entries in insertion order.
type Map struct {
	Entries []Entry
}

// Set is a JS Set with values in insertion order.
type Set struct {
	Values []Value
}

// maxTimeMillis is the TimeClip bound: 8.64e15 ms either side of the epoch.
const maxTimeMillis = 8.64e15

// Date is a JS Date. Time is milliseconds since the epoch after TimeClip:
// a whole number within ±8.64e15, or NaN for an invalid date.
type Date struct {
	Time float64
}

// NewDate applies TimeClip to ms.
func NewDate(ms float64) *Date {
	if math.IsNaN(ms) || ms > maxTimeMillis || ms < -maxTimeMillis {
		return &Date{Time: math.NaN()}
	}
	return &Date{Time: math.Trunc(ms) + 0}
}

// DateFromTime converts a time.Time at millisecond precision.
func DateFromTime(t time.Time) *Date {
	return NewDate(float64(t.UnixMilli()))
}

// Valid reports whether the date is not NaN.
func (d *Date) Valid() bool {
	return !math.IsNaN(d.Time)
}

// AsTime converts to time.Time in UTC. ok is false for an invalid date.
func (d *Date) AsTime() (t time.Time, ok bool) {
	if !d.Valid() {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(d.Time)).UTC(), true
}

// RegExpFlags is the flag bitset of a RegExp.
type RegExpFlags uint32

const (
	FlagGlobal      RegExpFlags = 1 << 0 // g
	FlagIgnoreCase  RegExpFlags = 1 << 1 // i
	FlagMultiline   RegExpFlags = 1 << 2 // m
	FlagSticky      RegExpFlags = 1 << 3 // y
	FlagUnicode     RegExpFlags = 1 << 4 // u
	FlagDotAll      RegExpFlags = 1 << 5 // s
	FlagLinear      RegExpFlags = 1 << 6 // l, never accepted on the wire
	FlagHasIndices  RegExpFlags = 1 << 7 // d
	FlagUnicodeSets RegExpFlags = 1 << 8 // v

	flagsMask RegExpFlags = 1<<9 - 1
)

var flagLetters = []struct {
	flag   RegExpFlags
	letter byte
}{
	{FlagHasIndices, 'd'},
	{FlagGlobal, 'g'},
	{FlagIgnoreCase, 'i'},
	{FlagLinear, 'l'},
	{FlagMultiline, 'm'},
	{FlagDotAll, 's'},
	{FlagUnicode, 'u'},
	{FlagUnicodeSets, 'v'},
	{FlagSticky, 'y'},
}

// String returns the flags in RegExp.prototype.flags order.
func (f RegExpFlags) String() string {
	var b strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			b.WriteByte(fl.letter)
		}
	}
	return b.String()
}

// ParseRegExpFlags parses a flag string such as "gi".
func ParseRegExpFlags(s string) (RegExpFlags, error) {
	var f RegExpFlags
outer:
	for i := 0; i < len(s); i++ {
		for _, fl := range flagLetters {
			if s[i] == fl.letter {
				if f&fl.flag != 0 {
					return 0, fmt.Errorf("duplicate regexp flag %q", s[i])
				}
				f |= fl.flag
				continue outer
			}
		}
		return 0, fmt.Errorf("invalid regexp flag %q", s[i])
	}
	return f, nil
}

// Validate reports flag combinations the engine refuses to deserialize.
func (f RegExpFlags) Validate() error {
	switch {
	case f&^flagsMask != 0:
		return fmt.Errorf("unknown regexp flag bits 0x%x", uint32(f&^flagsMask))
	case f&FlagLinear != 0:
		return fmt.Errorf("linear regexp flag is not serializable")
	case f&FlagUnicode != 0 && f&FlagUnicodeSets != 0:
		return fmt.Errorf("regexp flags u and v are mutually exclusive")
	}
	return nil
}

// RegExp is a JS regular expression.
type RegExp struct {
	Pattern String
	Flags   RegExpFlags
}

// ErrorName is the constructor of a JS error.
type ErrorName uint8

const (
	ErrorPlain ErrorName = iota
	EvalError
	RangeError
	ReferenceError
	SyntaxError
	TypeError
	URIError
)

func (n ErrorName) String() string {
	switch n {
	case ErrorPlain:
		return "Error"
	case EvalError:
		return "EvalError"
	case RangeError:
		return "RangeError"
	case ReferenceError:
		return "ReferenceError"
	case SyntaxError:
		return "SyntaxError"
	case TypeError:
		return "TypeError"
	case URIError:
		return "URIError"
	}
	return fmt.Sprintf("ErrorName(%d)", uint8(n))
}

// Error is a JS error object. Message and Stack are nil when absent, and so
// is Cause.
type Error struct {
	Message *String
	Stack   *String
	Cause   Value
	Name    ErrorName
}

// ArrayBuffer owns a byte buffer.
type ArrayBuffer struct {
	Data          []byte
	MaxByteLength uint32
	Resizable     bool
	Detached      bool
}

// ByteLength is the visible length; zero once detached.
func (b *ArrayBuffer) ByteLength() uint32 {
	if b.Detached {
		return 0
	}
	return uint32(len(b.Data))
}

// ViewKind is the element type of an ArrayBufferView.
type ViewKind uint8

const (
	ViewInt8 ViewKind = iota
	ViewUint8
	ViewUint8Clamped
	ViewInt16
	ViewUint16
	ViewInt32
	ViewUint32
	ViewFloat32
	ViewFloat64
	ViewBigInt64
	ViewBigUint64
	ViewDataView
)

var viewKindInfo = [...]struct {
	name string
	size uint32
}{
	ViewInt8:         {"Int8Array", 1},
	ViewUint8:        {"Uint8Array", 1},
	ViewUint8Clamped: {"Uint8ClampedArray", 1},
	ViewInt16:        {"Int16Array", 2},
	ViewUint16:       {"Uint16Array", 2},
	ViewInt32:        {"Int32Array", 4},
	ViewUint32:       {"Uint32Array", 4},
	ViewFloat32:      {"Float32Array", 4},
	ViewFloat64:      {"Float64Array", 8},
	ViewBigInt64:     {"BigInt64Array", 8},
	ViewBigUint64:    {"BigUint64Array", 8},
	ViewDataView:     {"DataView", 1},
}

// ElementSize returns the byte width of one element.
func (k ViewKind) ElementSize() uint32 {
	if int(k) < len(viewKindInfo) {
		return viewKindInfo[k].size
	}
	return 0
}

func (k ViewKind) String() string {
	if int(k) < len(viewKindInfo) {
		return viewKindInfo[k].name
	}
	return fmt.Sprintf("ViewKind(%d)", uint8(k))
}

// ArrayBufferView is a typed array or DataView over an ArrayBuffer in the
// same heap. Length counts elements, not bytes.
type ArrayBufferView struct {
	Buffer            Ref
	ByteOffset        uint32
	Length            uint32
	Type              ViewKind
	LengthTracking    bool
	BackedByResizable bool
}

// ByteLength returns Length times the element size.
func (v *ArrayBufferView) ByteLength() uint32 {
	return v.Length * v.Type.ElementSize()
}

// Bytes returns the bytes the view covers, or nil if it does not fit buf.
func (v *ArrayBufferView) Bytes(buf *ArrayBuffer) []byte {
	end := uint64(v.ByteOffset) + uint64(v.ByteLength())
	if end > uint64(buf.ByteLength()) {
		return nil
	}
	return buf.Data[v.ByteOffset:end]
}

// SharedArrayBuffer refers to memory shared out of band by transfer ID.
type SharedArrayBuffer struct {
	TransferID uint32
}

// WasmModuleTransfer refers to a compiled module transferred out of band.
type WasmModuleTransfer struct {
	TransferID uint32
}

// HostObject carries an embedder-defined payload verbatim.
type HostObject struct {
	Payload []byte
}

// BooleanObject is a boxed boolean (new Boolean(x)).
type BooleanObject struct {
	Value bool
}

// NumberObject is a boxed number.
type NumberObject struct {
	Value float64
}

// BigIntObject is a boxed bigint.
type BigIntObject struct {
	Value BigInt
}

// StringObject is a boxed string.
type StringObject struct {
	Value String
}

func (*Object) Kind() Kind             { return KindObject }
func (*Array) Kind() Kind              { return KindArray }
func (*Map) Kind() Kind                { return KindMap }
func (*Set) Kind() Kind                { return KindSet }
func (*Date) Kind() Kind               { return KindDate }
func (*RegExp) Kind() Kind             { return KindRegExp }
func (*Error) Kind() Kind              { return KindError }
func (*ArrayBuffer) Kind() Kind        { return KindArrayBuffer }
func (*ArrayBufferView) Kind() Kind    { return KindArrayBufferView }
func (*SharedArrayBuffer) Kind() Kind  { return KindSharedArrayBuffer }
func (*WasmModuleTransfer) Kind() Kind { return KindWasmModuleTransfer }
func (*HostObject) Kind() Kind         { return KindHostObject }
func (*BooleanObject) Kind() Kind      { return KindBooleanObject }
func (*NumberObject) Kind() Kind       { return KindNumberObject }
func (*BigIntObject) Kind() Kind       { return KindBigIntObject }
func (*StringObject) Kind() Kind       { return KindStringObject }

func (*Object) isHeapObject()             {}
func (*Array) isHeapObject()              {}
func (*Map) isHeapObject()                {}
func (*Set) isHeapObject()                {}
func (*Date) isHeapObject()               {}
func (*RegExp) isHeapObject()             {}
func (*Error) isHeapObject()              {}
func (*ArrayBuffer) isHeapObject()        {}
func (*ArrayBufferView) isHeapObject()    {}
func (*SharedArrayBuffer) isHeapObject()  {}
func (*WasmModuleTransfer) isHeapObject() {}
func (*HostObject) isHeapObject()         {}
func (*BooleanObject) isHeapObject()      {}
func (*NumberObject) isHeapObject()       {}
func (*BigIntObject) isHeapObject()       {}
func (*StringObject) isHeapObject()       {}
