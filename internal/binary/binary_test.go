package binary

import (
	"bytes"
	"math"
	"testing"

	"github.com/wippyai/v8value/errors"
)

func TestVarint32RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one byte max", 127, []byte{0x7f}},
		{"two bytes", 128, []byte{0x80, 0x01}},
		{"300", 300, []byte{0xac, 0x02}},
		{"max", math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(8)
			w.WriteVarint32(tt.value)
			if !bytes.Equal(w.Bytes(), tt.want) {
				t.Fatalf("encoded %x, want %x", w.Bytes(), tt.want)
			}
			if got := AppendVarint32([]byte{0xee}, tt.value); !bytes.Equal(got[1:], tt.want) || got[0] != 0xee {
				t.Errorf("AppendVarint32 = %x", got)
			}
			if VarintSize(tt.value) != len(tt.want) {
				t.Errorf("VarintSize = %d, want %d", VarintSize(tt.value), len(tt.want))
			}

			r := NewReader(w.Bytes())
			got, err := r.ReadVarint32()
			if err != nil {
				t.Fatalf("ReadVarint32: %v", err)
			}
			if got != tt.value {
				t.Errorf("got %d, want %d", got, tt.value)
			}
			if !r.EOF() {
				t.Errorf("reader not at EOF, %d bytes left", r.Remaining())
			}
		})
	}
}

func TestReadVarint32_OverlongDropsHighBits(t *testing.T) {
	// Six bytes with continuation; everything past bit 32 is ignored.
	r := NewReader([]byte{0x81, 0x80, 0x80, 0x80, 0xf0, 0x01, 'X'})
	got, err := r.ReadVarint32()
	if err != nil {
		t.Fatalf("ReadVarint32: %v", err)
	}
	if got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if r.Position() != 6 {
		t.Errorf("Position = %d, want 6", r.Position())
	}
}

func TestReadVarint8(t *testing.T) {
	r := NewReader([]byte{'E', 0xe2, 0x00})
	b, err := r.ReadVarint8()
	if err != nil || b != 'E' {
		t.Fatalf("got %q, %v", b, err)
	}
	b, err = r.ReadVarint8()
	if err != nil {
		t.Fatalf("ReadVarint8: %v", err)
	}
	if b != 0x62 {
		t.Errorf("got 0x%02x, want 0x62", b)
	}
}

func TestZigZag(t *testing.T) {
	values := []int32{0, -1, 1, -2, 2, 63, -64, math.MaxInt32, math.MinInt32}
	for _, v := range values {
		w := NewWriter(8)
		w.WriteZigZag32(v)
		got, err := NewReader(w.Bytes()).ReadZigZag32()
		if err != nil {
			t.Fatalf("ReadZigZag32(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}

	w := NewWriter(4)
	w.WriteZigZag32(-1)
	if !bytes.Equal(w.Bytes(), []byte{0x01}) {
		t.Errorf("-1 encoded as %x, want 01", w.Bytes())
	}
}

func TestDouble(t *testing.T) {
	w := NewWriter(8)
	w.WriteDouble(1.5)
	want := []byte{0, 0, 0, 0, 0, 0, 0xf8, 0x3f}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("encoded %x, want %x", w.Bytes(), want)
	}
	got, err := NewReader(want).ReadDouble()
	if err != nil || got != 1.5 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestTruncation(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(r *Reader) error
	}{
		{"byte", nil, func(r *Reader) error { _, err := r.ReadByte(); return err }},
		{"varint", []byte{0x80, 0x80}, func(r *Reader) error { _, err := r.ReadVarint32(); return err }},
		{"varint8", []byte{0x80}, func(r *Reader) error { _, err := r.ReadVarint8(); return err }},
		{"double", []byte{1, 2, 3}, func(r *Reader) error { _, err := r.ReadDouble(); return err }},
		{"bytes", []byte{1, 2}, func(r *Reader) error { _, err := r.ReadBytes(3); return err }},
		{"huge length", []byte{1}, func(r *Reader) error { _, err := r.ReadBytesCopy(math.MaxInt32); return err }},
		{"negative length", []byte{1}, func(r *Reader) error { _, err := r.ReadBytes(-1); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewReader(tt.data))
			if errors.KindOf(err) != errors.KindTruncatedInput {
				t.Fatalf("got %v, want truncated_input", err)
			}
		})
	}
}

func TestSkipHelpers(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 'T', 'F'})
	r.SkipWhile(0)
	if r.Position() != 3 {
		t.Fatalf("Position = %d, want 3", r.Position())
	}
	if r.SkipByte('F') {
		t.Error("SkipByte matched wrong byte")
	}
	if !r.SkipByte('T') {
		t.Error("SkipByte did not match")
	}
	if b, ok := r.Peek(); !ok || b != 'F' {
		t.Errorf("Peek = %q, %v", b, ok)
	}
}

func TestWriterReset(t *testing.T) {
	w := NewWriter(2)
	w.WriteBytes([]byte("hello"))
	w.Reset()
	if w.Len() != 0 {
		t.Errorf("Len after Reset = %d", w.Len())
	}
	if w.Cap() < 5 {
		t.Errorf("Cap after Reset = %d, want >= 5", w.Cap())
	}
}
