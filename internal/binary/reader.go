package binary

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/v8value/errors"
)

// Reader is a bounds-checked cursor over an immutable byte slice.
// Every read that would run past the end fails with a truncated_input
// error carrying the offset where the read started.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte offset.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// EOF reports whether all input has been consumed.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.data)
}

// Need fails unless at least n bytes remain.
func (r *Reader) Need(n int) error {
	if n < 0 || r.Remaining() < n {
		return errors.TruncatedInput(r.pos, n, r.Remaining())
	}
	return nil
}

// Peek returns the next byte without consuming it.
func (r *Reader) Peek() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	return r.data[r.pos], true
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errors.TruncatedInput(r.pos, 1, 0)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes returns the next n bytes without copying. The length is checked
// against the remaining input before anything is sliced.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.Need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytesCopy is ReadBytes followed by a copy into a fresh slice.
func (r *Reader) ReadBytesCopy(n int) ([]byte, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// SkipByte consumes the next byte if it equals b.
func (r *Reader) SkipByte(b byte) bool {
	if r.pos < len(r.data) && r.data[r.pos] == b {
		r.pos++
		return true
	}
	return false
}

// SkipWhile consumes consecutive bytes equal to b.
func (r *Reader) SkipWhile(b byte) {
	for r.pos < len(r.data) && r.data[r.pos] == b {
		r.pos++
	}
}

// ReadVarint32 reads an unsigned base-128 varint. Continuation bytes are
// consumed until a byte without the high bit; bits past 32 are dropped.
func (r *Reader) ReadVarint32() (uint32, error) {
	start := r.pos
	var result uint32
	var shift uint
	for {
		if r.pos >= len(r.data) {
			return 0, errors.TruncatedInput(start, r.pos-start+1, 0)
		}
		b := r.data[r.pos]
		r.pos++
		if shift < 32 {
			result |= uint32(b&0x7f) << shift
			shift += 7
		}
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// ReadVarint8 reads a varint whose value is truncated to a byte.
func (r *Reader) ReadVarint8() (byte, error) {
	start := r.pos
	var result byte
	var shift uint
	for {
		if r.pos >= len(r.data) {
			return 0, errors.TruncatedInput(start, r.pos-start+1, 0)
		}
		b := r.data[r.pos]
		r.pos++
		if shift < 8 {
			result |= (b & 0x7f) << shift
			shift += 7
		}
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// ReadZigZag32 reads a ZigZag-encoded signed varint.
func (r *Reader) ReadZigZag32() (int32, error) {
	u, err := r.ReadVarint32()
	if err != nil {
		return 0, err
	}
	return int32(u>>1) ^ -int32(u&1), nil
}

// ReadDouble reads an IEEE-754 double in little-endian byte order.
func (r *Reader) ReadDouble() (float64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}
