package codec_test

import (
	"testing"

	"github.com/wippyai/v8value/codec"
	"github.com/wippyai/v8value/value"
)

func FuzzDeserialize(f *testing.F) {
	// Valid streams
	f.Add([]byte{0xff, 0x0f, '_'})
	f.Add([]byte{0xff, 0x0f, 'o', '"', 0x01, 'a', 'I', 0x02, '{', 0x01})
	f.Add([]byte{0xff, 0x0f, ';', '^', 0x00, '^', 0x00, ':', 0x02})
	f.Add([]byte{0xff, 0x0f, 'B', 0x04, 1, 2, 3, 4, 'V', 'B', 0x01, 0x02, 0x00})
	f.Add([]byte{0xff, 0x0f, 'r', 'T', 'm', '"', 0x01, 'x', 'c', '^', 0x00, '.'})

	// Truncated and oversized lengths
	f.Add([]byte{0xff, 0x0f, 'A', 0xff, 0xff, 0xff, 0xff, 0x0f})
	f.Add([]byte{0xff, 0x0f, '"', 0x05, 'a'})
	f.Add([]byte{0xff})

	d := codec.NewDeserializer(codec.Options{MaxDepth: 64})
	s := codec.NewSerializerWithDefaults()
	f.Fuzz(func(t *testing.T, data []byte) {
		// Fuzzing should not panic
		g, err := d.Deserialize(data)
		if err != nil {
			return
		}
		// Whatever decodes must encode and decode to the same graph.
		out, err := s.Serialize(g)
		if err != nil {
			t.Fatalf("decoded graph does not encode: %v", err)
		}
		back, err := d.Deserialize(out)
		if err != nil {
			t.Fatalf("re-encoded bytes do not decode: %v", err)
		}
		if !value.Equal(g, back) {
			t.Fatalf("round trip changed the graph")
		}
	})
}
