package value

import (
	"encoding/binary"
	"math/big"
	"slices"
)

// BigInt is an arbitrary precision integer stored as sign and magnitude.
// Words holds the magnitude in 64-bit digits, least significant first, with
// no trailing zero digits. Zero is never negative.
type BigInt struct {
	Words    []uint64
	Negative bool
}

// NewBigInt converts a math/big integer.
func NewBigInt(x *big.Int) BigInt {
	return BigIntFromBytes(x.Sign() < 0, reverse(x.Bytes()))
}

// BigIntFromInt64 converts a machine integer.
func BigIntFromInt64(v int64) BigInt {
	if v < 0 {
		return BigInt{Negative: true, Words: []uint64{uint64(-v)}}
	}
	if v == 0 {
		return BigInt{}
	}
	return BigInt{Words: []uint64{uint64(v)}}
}

// BigIntFromBytes builds a BigInt from a little-endian magnitude of any length.
func BigIntFromBytes(negative bool, le []byte) BigInt {
	words := make([]uint64, (len(le)+7)/8)
	for i := range words {
		var chunk [8]byte
		copy(chunk[:], le[i*8:])
		words[i] = binary.LittleEndian.Uint64(chunk[:])
	}
	return BigInt{Negative: negative, Words: words}.normalize()
}

// Bytes returns the little-endian magnitude padded to whole 64-bit digits.
// High zero digits are dropped.
func (b BigInt) Bytes() []byte {
	b = b.normalize()
	out := make([]byte, 0, len(b.Words)*8)
	for _, w := range b.Words {
		out = binary.LittleEndian.AppendUint64(out, w)
	}
	return out
}

// Big converts to a math/big integer.
func (b BigInt) Big() *big.Int {
	x := new(big.Int).SetBytes(reverse(b.Bytes()))
	if b.Negative {
		x.Neg(x)
	}
	return x
}

// Sign returns -1, 0 or +1.
func (b BigInt) Sign() int {
	b = b.normalize()
	switch {
	case len(b.Words) == 0:
		return 0
	case b.Negative:
		return -1
	}
	return 1
}

func (b BigInt) String() string {
	return b.Big().String()
}

// Equal compares numerically.
func (b BigInt) Equal(o BigInt) bool {
	b, o = b.normalize(), o.normalize()
	return b.Negative == o.Negative && slices.Equal(b.Words, o.Words)
}

func (b BigInt) normalize() BigInt {
	n := len(b.Words)
	for n > 0 && b.Words[n-1] == 0 {
		n--
	}
	b.Words = b.Words[:n]
	if n == 0 {
		b.Negative = false
	}
	return b
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
