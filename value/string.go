package value

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding is the wire representation a String was read from or will be
// written as.
type Encoding uint8

const (
	// OneByte is Latin-1: one byte per code unit.
	OneByte Encoding = iota
	// TwoByte is UTF-16 code units in little-endian order.
	TwoByte
	// UTF8 is WTF-8: UTF-8 that may also encode lone surrogates.
	UTF8
)

func (e Encoding) String() string {
	switch e {
	case OneByte:
		return "one-byte"
	case TwoByte:
		return "two-byte"
	case UTF8:
		return "utf-8"
	}
	return "unknown"
}

// String is a JS string together with its encoding. Bytes holds the data of
// OneByte and UTF8 strings, Units the data of TwoByte strings.
type String struct {
	Bytes    []byte
	Units    []uint16
	Encoding Encoding
}

// OneByteString wraps Latin-1 bytes.
func OneByteString(b []byte) String {
	return String{Encoding: OneByte, Bytes: b}
}

// TwoByteString wraps UTF-16 code units.
func TwoByteString(u []uint16) String {
	return String{Encoding: TwoByte, Units: u}
}

// UTF8String wraps WTF-8 bytes.
func UTF8String(b []byte) String {
	return String{Encoding: UTF8, Bytes: b}
}

// NewString picks the encoding V8 would use for s: Latin-1 when every rune
// fits in a byte, UTF-16 otherwise.
func NewString(s string) String {
	latin1 := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			return TwoByteString(utf16.Encode([]rune(s)))
		}
		latin1 = append(latin1, b)
	}
	return OneByteString(latin1)
}

// Len returns the length in UTF-16 code units, as JS String.length does.
func (s String) Len() int {
	switch s.Encoding {
	case OneByte:
		return len(s.Bytes)
	case TwoByte:
		return len(s.Units)
	}
	return len(s.CodeUnits())
}

// Text returns the string as Go UTF-8 text. Lone surrogates become U+FFFD.
func (s String) Text() string {
	switch s.Encoding {
	case OneByte:
		buf := make([]byte, 0, len(s.Bytes))
		for _, b := range s.Bytes {
			buf = utf8.AppendRune(buf, charmap.ISO8859_1.DecodeByte(b))
		}
		return string(buf)
	case TwoByte:
		return string(utf16.Decode(s.Units))
	}
	return string(utf16.Decode(s.CodeUnits()))
}

// CodeUnits returns the UTF-16 code units of the string.
func (s String) CodeUnits() []uint16 {
	switch s.Encoding {
	case OneByte:
		out := make([]uint16, len(s.Bytes))
		for i, b := range s.Bytes {
			out[i] = uint16(b)
		}
		return out
	case TwoByte:
		return s.Units
	}
	return wtf8ToUTF16(s.Bytes)
}

// Equal compares two strings by content regardless of encoding.
func (s String) Equal(o String) bool {
	if s.Encoding == o.Encoding && s.Encoding != TwoByte {
		return string(s.Bytes) == string(o.Bytes)
	}
	a, b := s.CodeUnits(), o.CodeUnits()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share storage with s.
func (s String) Clone() String {
	out := String{Encoding: s.Encoding}
	if s.Bytes != nil {
		out.Bytes = append([]byte(nil), s.Bytes...)
	}
	if s.Units != nil {
		out.Units = append([]uint16(nil), s.Units...)
	}
	return out
}

func wtf8ToUTF16(b []byte) []uint16 {
	out := make([]uint16, 0, len(b))
	for len(b) > 0 {
		// Surrogate code points are encoded as ED A0..BF xx.
		if len(b) >= 3 && b[0] == 0xED && b[1]&0xE0 == 0xA0 && b[2]&0xC0 == 0x80 {
			out = append(out, 0xD000|uint16(b[1]&0x3F)<<6|uint16(b[2]&0x3F))
			b = b[3:]
			continue
		}
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			out = append(out, uint16(hi), uint16(lo))
			continue
		}
		out = append(out, uint16(r))
	}
	return out
}
