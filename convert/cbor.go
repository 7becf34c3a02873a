package convert

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/v8value/errors"
	"github.com/wippyai/v8value/value"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys
// and shortest forms, so equal graphs produce equal bytes.
var encMode cbor.EncMode

// decMode decodes maps into map[string]any so FromGo can consume them.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("convert: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("convert: CBOR decoder initialization failed: " + err.Error())
	}
}

// ToCBOR renders g as CBOR. Buffers and views become byte strings; object
// keys are sorted.
func ToCBOR(g *value.Graph) ([]byte, error) {
	v, err := ToGo(g)
	if err != nil {
		return nil, err
	}
	out, err := encMode.Marshal(unordered(v))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, err, "cbor encoding failed")
	}
	return out, nil
}

// FromCBOR decodes one CBOR data item into a graph.
func FromCBOR(data []byte) (*value.Graph, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, err, "invalid cbor")
	}
	return FromGo(v)
}

// unordered replaces every *OrderedMap with a plain map.
func unordered(v any) any {
	switch x := v.(type) {
	case *OrderedMap:
		out := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			out[k] = unordered(x.values[k])
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = unordered(e)
		}
		return out
	}
	return v
}
