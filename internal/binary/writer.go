package binary

import (
	"encoding/binary"
	"math"
)

// Writer appends wire-format primitives to a growable byte slice.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written bytes. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Cap returns the capacity of the underlying buffer.
func (w *Writer) Cap() int {
	return cap(w.buf)
}

// Reset discards written bytes, keeping the buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteVarint32 writes an unsigned base-128 varint.
func (w *Writer) WriteVarint32(v uint32) {
	w.buf = AppendVarint32(w.buf, v)
}

// AppendVarint32 appends v to b as an unsigned base-128 varint.
func AppendVarint32(b []byte, v uint32) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// WriteZigZag32 writes a signed integer as a ZigZag varint
// (0 → 0, -1 → 1, 1 → 2, -2 → 3, ...).
func (w *Writer) WriteZigZag32(v int32) {
	w.WriteVarint32(uint32(v<<1) ^ uint32(v>>31))
}

// WriteDouble writes an IEEE-754 double in little-endian byte order.
func (w *Writer) WriteDouble(f float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(f))
}

// VarintSize returns the number of bytes WriteVarint32 emits for v.
func VarintSize(v uint32) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}
