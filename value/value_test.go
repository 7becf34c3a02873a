package value

import (
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/wippyai/v8value/errors"
)

func TestNumberString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-42, "-42"},
		{1.5, "1.5"},
		{123.456, "123.456"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{1e21, "1e+21"},
		{1e20, "100000000000000000000"},
		{1.2345e25, "1.2345e+25"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{4294967295, "4294967295"},
	}
	for _, tt := range tests {
		if got := NumberString(tt.in); got != tt.want {
			t.Errorf("NumberString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPropertyKeyString(t *testing.T) {
	a, _ := PropertyKeyString(Int32(1))
	b, _ := PropertyKeyString(Double(1))
	c, _ := PropertyKeyString(NewString("1"))
	if a != b || b != c {
		t.Errorf("keys differ: %q %q %q", a, b, c)
	}
	if _, ok := PropertyKeyString(Null{}); ok {
		t.Error("null should not be a property key")
	}
	if IsPropertyKey(Ref(0)) {
		t.Error("Ref should not be a property key")
	}
}

func TestNewString(t *testing.T) {
	tests := []struct {
		in  string
		enc Encoding
	}{
		{"hello", OneByte},
		{"café", OneByte},
		{"", OneByte},
		{"日本", TwoByte},
		{"emoji 😀", TwoByte},
	}
	for _, tt := range tests {
		s := NewString(tt.in)
		if s.Encoding != tt.enc {
			t.Errorf("NewString(%q).Encoding = %v, want %v", tt.in, s.Encoding, tt.enc)
		}
		if s.Text() != tt.in {
			t.Errorf("Text() = %q, want %q", s.Text(), tt.in)
		}
	}

	if got := NewString("café").Bytes; len(got) != 4 || got[3] != 0xE9 {
		t.Errorf("latin-1 bytes = %x", got)
	}
	if got := NewString("😀").Len(); got != 2 {
		t.Errorf("Len = %d, want 2 code units", got)
	}
}

func TestStringEqualAcrossEncodings(t *testing.T) {
	one := OneByteString([]byte{'a', 0xE9})
	two := TwoByteString([]uint16{'a', 0xE9})
	utf := UTF8String([]byte("a\u00e9"))
	if !one.Equal(two) || !two.Equal(utf) || !utf.Equal(one) {
		t.Error("same text in different encodings should be equal")
	}
	if one.Equal(OneByteString([]byte("ab"))) {
		t.Error("different text compared equal")
	}
}

func TestWTF8LoneSurrogate(t *testing.T) {
	s := UTF8String([]byte{'x', 0xED, 0xA0, 0x80})
	units := s.CodeUnits()
	if len(units) != 2 || units[0] != 'x' || units[1] != 0xD800 {
		t.Fatalf("CodeUnits = %x", units)
	}
	if !s.Equal(TwoByteString([]uint16{'x', 0xD800})) {
		t.Error("wtf-8 surrogate should equal the two-byte form")
	}
}

func TestBigInt(t *testing.T) {
	tests := []string{"0", "1", "-1", "18446744073709551615", "18446744073709551616", "-123456789012345678901234567890"}
	for _, s := range tests {
		x, _ := new(big.Int).SetString(s, 10)
		b := NewBigInt(x)
		if b.Big().Cmp(x) != 0 {
			t.Errorf("round trip %s -> %s", s, b.Big())
		}
		if b.String() != s {
			t.Errorf("String() = %s, want %s", b, s)
		}
		if len(b.Bytes())%8 != 0 {
			t.Errorf("Bytes not word aligned for %s", s)
		}
	}

	if BigIntFromBytes(true, nil).Negative {
		t.Error("negative zero should normalize")
	}
	if !BigIntFromBytes(false, []byte{1, 0, 0}).Equal(BigIntFromInt64(1)) {
		t.Error("short magnitude should equal word form")
	}
	if got := (BigInt{Words: []uint64{5, 0}, Negative: true}).Bytes(); len(got) != 8 || got[0] != 5 {
		t.Errorf("Bytes kept a high zero digit: %x", got)
	}
	if got := (BigInt{Words: []uint64{0}, Negative: true}).Bytes(); len(got) != 0 {
		t.Error("zero should have no digits")
	}
	if BigIntFromInt64(math.MinInt64).String() != "-9223372036854775808" {
		t.Errorf("MinInt64 = %s", BigIntFromInt64(math.MinInt64))
	}
}

func TestDateTimeClip(t *testing.T) {
	tests := []struct {
		in    float64
		want  float64
		valid bool
	}{
		{0, 0, true},
		{1.9, 1, true},
		{-1.9, -1, true},
		{8.64e15, 8.64e15, true},
		{8.64e15 + 1, 0, false},
		{math.Inf(1), 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		d := NewDate(tt.in)
		if d.Valid() != tt.valid {
			t.Errorf("NewDate(%v).Valid() = %v", tt.in, d.Valid())
			continue
		}
		if tt.valid && d.Time != tt.want {
			t.Errorf("NewDate(%v).Time = %v, want %v", tt.in, d.Time, tt.want)
		}
	}

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got, ok := DateFromTime(ts).AsTime()
	if !ok || !got.Equal(ts) {
		t.Errorf("AsTime = %v, %v", got, ok)
	}
}

func TestRegExpFlags(t *testing.T) {
	f, err := ParseRegExpFlags("gimsuy")
	if err != nil {
		t.Fatalf("ParseRegExpFlags: %v", err)
	}
	if f.String() != "gimsuy" {
		t.Errorf("String() = %q", f.String())
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if _, err := ParseRegExpFlags("gg"); err == nil {
		t.Error("duplicate flag accepted")
	}
	if _, err := ParseRegExpFlags("q"); err == nil {
		t.Error("unknown flag accepted")
	}

	bad := []RegExpFlags{FlagLinear, FlagUnicode | FlagUnicodeSets, 1 << 12}
	for _, b := range bad {
		if b.Validate() == nil {
			t.Errorf("Validate(%b) accepted", b)
		}
	}
}

func TestHeap(t *testing.T) {
	h := NewHeap()
	r := h.Reserve()
	if h.Filled(r) {
		t.Fatal("reserved slot reported filled")
	}
	if _, err := h.Get(r); errors.KindOf(err) != errors.KindUnknownReference {
		t.Errorf("Get(unfilled) = %v", err)
	}
	if ref, ok := h.Unfilled(); !ok || ref != r {
		t.Errorf("Unfilled = %d, %v", ref, ok)
	}
	if err := h.Fill(r, &Object{}); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := h.Fill(r, &Object{}); errors.KindOf(err) != errors.KindDuplicateBinding {
		t.Errorf("second Fill = %v", err)
	}
	if err := h.Fill(9, &Object{}); errors.KindOf(err) != errors.KindUnknownReference {
		t.Errorf("Fill out of range = %v", err)
	}
	if _, err := h.Get(9); errors.KindOf(err) != errors.KindUnknownReference {
		t.Errorf("Get out of range = %v", err)
	}
	if h.Add(&Set{}) != 1 || h.Len() != 2 {
		t.Errorf("Add gave wrong ref, Len = %d", h.Len())
	}
}

// selfArray builds {"a": [1, 2, <self>]}.
func selfArray() *Graph {
	h := NewHeap()
	obj := &Object{}
	root := h.Add(obj)
	arr := NewDenseArray(Int32(1), Int32(2))
	ref := h.Add(arr)
	arr.Elements = append(arr.Elements, ref)
	obj.Properties = []Property{{Key: NewString("a"), Value: ref}}
	return NewGraph(root, h)
}

func TestEqual(t *testing.T) {
	a := selfArray()
	if !Equal(a, selfArray()) {
		t.Fatal("identical graphs not equal")
	}
	if !Equal(a, a.Clone()) {
		t.Fatal("clone not equal")
	}

	// Same structure, but the third element is a fresh array rather than
	// the array itself.
	h := NewHeap()
	obj := &Object{}
	root := h.Add(obj)
	inner := h.Add(NewDenseArray())
	arr := NewDenseArray(Int32(1), Int32(2), inner)
	ref := h.Add(arr)
	obj.Properties = []Property{{Key: NewString("a"), Value: ref}}
	if Equal(a, NewGraph(root, h)) {
		t.Error("different topology compared equal")
	}
}

func TestEqualSharingVersusCopies(t *testing.T) {
	shared := func() *Graph {
		h := NewHeap()
		o := h.Add(&Object{})
		s := h.Add(&Set{Values: []Value{o, o}})
		return NewGraph(s, h)
	}
	copies := func() *Graph {
		h := NewHeap()
		o1 := h.Add(&Object{})
		o2 := h.Add(&Object{})
		s := h.Add(&Set{Values: []Value{o1, o2}})
		return NewGraph(s, h)
	}
	if !Equal(shared(), shared()) {
		t.Error("shared != shared")
	}
	if Equal(shared(), copies()) || Equal(copies(), shared()) {
		t.Error("sharing must be observable")
	}
}

func TestEqualScalars(t *testing.T) {
	if !Equal(Scalar(Double(math.NaN())), Scalar(Double(math.NaN()))) {
		t.Error("NaN should equal NaN")
	}
	if Equal(Scalar(Int32(1)), Scalar(Double(1))) {
		t.Error("Int32 and Double should differ")
	}
	if !Equal(Scalar(OneByteString([]byte("x"))), Scalar(TwoByteString([]uint16{'x'}))) {
		t.Error("string content comparison failed")
	}
}

func TestCloneIsDeep(t *testing.T) {
	h := NewHeap()
	buf := &ArrayBuffer{Data: []byte{1, 2, 3}}
	g := NewGraph(h.Add(buf), h)
	c := g.Clone()
	buf.Data[0] = 9
	cb := c.Heap.Lookup(0).(*ArrayBuffer)
	if cb.Data[0] != 1 {
		t.Error("clone shares buffer bytes")
	}
}

func TestWalk(t *testing.T) {
	g := selfArray()
	var order []Ref
	err := g.Walk(func(ref Ref, obj HeapObject) error {
		order = append(order, ref)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(order) != 2 || order[0] != 0 || order[1] != 1 {
		t.Errorf("order = %v", order)
	}
	if g.Reachable() != 2 {
		t.Errorf("Reachable = %d", g.Reachable())
	}
}

func TestDump(t *testing.T) {
	out := selfArray().String()
	for _, want := range []string{"#0 Object(1)", `"a": #1 Array(3)`, "*1"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestViewBytes(t *testing.T) {
	buf := &ArrayBuffer{Data: []byte{0, 1, 2, 3, 4, 5, 6, 7}}
	v := &ArrayBufferView{Type: ViewUint16, ByteOffset: 2, Length: 2}
	if got := v.Bytes(buf); len(got) != 4 || got[0] != 2 {
		t.Errorf("Bytes = %v", got)
	}
	v.Length = 4
	if v.Bytes(buf) != nil {
		t.Error("out of range view returned bytes")
	}
}
