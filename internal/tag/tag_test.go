package tag

import "testing"

func TestTagString(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{BeginObject, "BeginObject"},
		{TwoByteString, "TwoByteString"},
		{Version, "Version"},
		{Tag(0x01), "Tag(0x01)"},
	}
	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", byte(tt.tag), got, tt.want)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known(HostObject) {
		t.Error("HostObject should be known")
	}
	if Known(Tag('!')) {
		t.Error("'!' should not be known")
	}
	if len(names) != 43 {
		t.Errorf("tag table has %d entries, want 43", len(names))
	}
}
