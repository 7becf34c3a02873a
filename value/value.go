package value

import "fmt"

// Kind identifies a variant of Value or HeapObject.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Scalars, held inline in a Value.
	KindUndefined
	KindNull
	KindBool
	KindInt32
	KindUint32
	KindDouble
	KindBigInt
	KindString
	KindRef

	// Heap objects, addressed through a Ref.
	KindObject
	KindArray
	KindMap
	KindSet
	KindDate
	KindRegExp
	KindError
	KindArrayBuffer
	KindArrayBufferView
	KindSharedArrayBuffer
	KindWasmModuleTransfer
	KindHostObject
	KindBooleanObject
	KindNumberObject
	KindBigIntObject
	KindStringObject
)

var kindNames = [...]string{
	KindInvalid:            "Invalid",
	KindUndefined:          "Undefined",
	KindNull:               "Null",
	KindBool:               "Bool",
	KindInt32:              "Int32",
	KindUint32:             "Uint32",
	KindDouble:             "Double",
	KindBigInt:             "BigInt",
	KindString:             "String",
	KindRef:                "Ref",
	KindObject:             "Object",
	KindArray:              "Array",
	KindMap:                "Map",
	KindSet:                "Set",
	KindDate:               "Date",
	KindRegExp:             "RegExp",
	KindError:              "Error",
	KindArrayBuffer:        "ArrayBuffer",
	KindArrayBufferView:    "ArrayBufferView",
	KindSharedArrayBuffer:  "SharedArrayBuffer",
	KindWasmModuleTransfer: "WasmModuleTransfer",
	KindHostObject:         "HostObject",
	KindBooleanObject:      "BooleanObject",
	KindNumberObject:       "NumberObject",
	KindBigIntObject:       "BigIntObject",
	KindStringObject:       "StringObject",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is a scalar or a reference into the Heap. The set of
// implementations is closed.
type Value interface {
	Kind() Kind
	isValue()
}

// Undefined is the JS undefined value.
type Undefined struct{}

// Null is the JS null value.
type Null struct{}

// Bool is a JS boolean.
type Bool bool

// Int32 is a number carried as a small integer on the wire.
type Int32 int32

// Uint32 is a number carried as an unsigned varint on the wire.
type Uint32 uint32

// Double is a number carried as an IEEE-754 double.
type Double float64

// Ref identifies a HeapObject in the Heap that owns it. Two Refs are the same
// object exactly when they are equal.
type Ref uint32

func (Undefined) Kind() Kind { return KindUndefined }
func (Null) Kind() Kind      { return KindNull }
func (Bool) Kind() Kind      { return KindBool }
func (Int32) Kind() Kind     { return KindInt32 }
func (Uint32) Kind() Kind    { return KindUint32 }
func (Double) Kind() Kind    { return KindDouble }
func (BigInt) Kind() Kind    { return KindBigInt }
func (String) Kind() Kind    { return KindString }
func (Ref) Kind() Kind       { return KindRef }

func (Undefined) isValue() {}
func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Int32) isValue()     {}
func (Uint32) isValue()    {}
func (Double) isValue()    {}
func (BigInt) isValue()    {}
func (String) isValue()    {}
func (Ref) isValue()       {}

// IsPropertyKey reports whether v may be used as an object property key.
func IsPropertyKey(v Value) bool {
	switch v.(type) {
	case Int32, Uint32, Double, String:
		return true
	}
	return false
}

// PropertyKeyString returns the JS property name a key denotes, so that the
// Int32 1, the Double 1 and the string "1" name the same property.
func PropertyKeyString(v Value) (string, bool) {
	switch k := v.(type) {
	case Int32:
		return NumberString(float64(k)), true
	case Uint32:
		return NumberString(float64(k)), true
	case Double:
		return NumberString(float64(k)), true
	case String:
		return k.Text(), true
	}
	return "", false
}
