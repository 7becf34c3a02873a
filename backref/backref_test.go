package backref

import (
	"testing"

	"github.com/wippyai/v8value/errors"
	"github.com/wippyai/v8value/value"
)

func TestDecodeTable_AllocationOrder(t *testing.T) {
	tbl := NewDecodeTable()
	for want := uint32(0); want < 5; want++ {
		if got := tbl.Allocate(); got != want {
			t.Fatalf("Allocate() = %d, want %d", got, want)
		}
	}
	if ref := tbl.Add(&value.Date{}); ref != 5 {
		t.Errorf("Add() = %d, want 5", ref)
	}
}

func TestDecodeTable_SelfReference(t *testing.T) {
	tbl := NewDecodeTable()
	id := tbl.Allocate()

	// The body refers to the object before it is bound.
	ref, err := tbl.Resolve(id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tbl.Lookup(ref) != nil {
		t.Error("unbound object should not be visible")
	}
	m := &value.Map{Entries: []value.Entry{{Key: value.NewString("self"), Value: ref}}}
	if err := tbl.Bind(id, m); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	heap, err := tbl.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	got := heap.Lookup(ref).(*value.Map)
	if got.Entries[0].Value != ref {
		t.Error("self reference lost")
	}
}

func TestDecodeTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		run  func(tbl *DecodeTable) error
		kind errors.Kind
	}{
		{
			name: "resolve unknown",
			run: func(tbl *DecodeTable) error {
				_, err := tbl.Resolve(3)
				return err
			},
			kind: errors.KindUnknownReference,
		},
		{
			name: "bind twice",
			run: func(tbl *DecodeTable) error {
				id := tbl.Allocate()
				if err := tbl.Bind(id, &value.Object{}); err != nil {
					return err
				}
				return tbl.Bind(id, &value.Object{})
			},
			kind: errors.KindDuplicateBinding,
		},
		{
			name: "bind never allocated",
			run: func(tbl *DecodeTable) error {
				return tbl.Bind(7, &value.Object{})
			},
			kind: errors.KindUnknownReference,
		},
		{
			name: "finish with unbound id",
			run: func(tbl *DecodeTable) error {
				tbl.Allocate()
				_, err := tbl.Finish()
				return err
			},
			kind: errors.KindUnknownReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(NewDecodeTable())
			if errors.KindOf(err) != tt.kind {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestEncodeTable_Track(t *testing.T) {
	tbl := NewEncodeTable()

	id, seen := tbl.Track(value.Ref(7))
	if seen || id != 0 {
		t.Fatalf("first Track = %d, %v", id, seen)
	}
	id, seen = tbl.Track(value.Ref(3))
	if seen || id != 1 {
		t.Fatalf("second Track = %d, %v", id, seen)
	}
	id, seen = tbl.Track(value.Ref(7))
	if !seen || id != 0 {
		t.Fatalf("repeat Track = %d, %v", id, seen)
	}
	if !tbl.Seen(value.Ref(3)) || tbl.Seen(value.Ref(4)) {
		t.Error("Seen mismatch")
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}
}
