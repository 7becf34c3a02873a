package convert

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/v8value/errors"
	"github.com/wippyai/v8value/value"
)

// ToJSON renders g as JSON with object keys in property order.
func ToJSON(g *value.Graph) ([]byte, error) {
	v, err := ToGo(g)
	if err != nil {
		return nil, err
	}
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)
	writeJSON(stream, v)
	if stream.Error != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, stream.Error, "json encoding failed")
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func writeJSON(s *jsoniter.Stream, v any) {
	switch x := v.(type) {
	case nil:
		s.WriteNil()
	case bool:
		s.WriteBool(x)
	case float64:
		s.WriteFloat64(x)
	case string:
		s.WriteString(x)
	case []any:
		s.WriteArrayStart()
		for i, e := range x {
			if i > 0 {
				s.WriteMore()
			}
			writeJSON(s, e)
		}
		s.WriteArrayEnd()
	case *OrderedMap:
		s.WriteObjectStart()
		for i, k := range x.keys {
			if i > 0 {
				s.WriteMore()
			}
			s.WriteObjectField(k)
			writeJSON(s, x.values[k])
		}
		s.WriteObjectEnd()
	default:
		// []byte and anything else take jsoniter's standard encoding.
		s.WriteVal(x)
	}
}

// FromJSON parses JSON into a graph, keeping object keys in document order.
func FromJSON(data []byte) (*value.Graph, error) {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	v := readJSON(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, iter.Error, "invalid json")
	}
	// Only whitespace may follow; anything else leaves Error unset.
	if iter.WhatIsNext(); iter.Error == nil {
		return nil, errors.InvalidData(errors.PhaseValidate, errors.NoOffset, "trailing data after json value")
	}
	return FromGo(v)
}

func readJSON(iter *jsoniter.Iterator) any {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil
	case jsoniter.BoolValue:
		return iter.ReadBool()
	case jsoniter.NumberValue:
		return iter.ReadFloat64()
	case jsoniter.StringValue:
		return iter.ReadString()
	case jsoniter.ArrayValue:
		out := []any{}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			out = append(out, readJSON(it))
			return it.Error == nil
		})
		return out
	case jsoniter.ObjectValue:
		m := NewOrderedMap()
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			m.Set(key, readJSON(it))
			return it.Error == nil
		})
		return m
	}
	iter.ReportError("readJSON", "unexpected token")
	return nil
}
