package convert

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"time"

	"github.com/wippyai/v8value/errors"
	"github.com/wippyai/v8value/value"
)

// maxSafeInteger is 2^53, the largest magnitude a double holds exactly.
const maxSafeInteger = 1 << 53

// FromGo builds a graph from JSON-like Go data: nil, bool, numbers, string,
// []byte, time.Time, *big.Int, []any, map[string]any and *OrderedMap.
//
// Whole numbers that fit become Int32, other numbers Double, integers beyond
// 2^53 BigInt. Plain maps are written with sorted keys. A []byte becomes a
// Uint8Array over its own ArrayBuffer.
func FromGo(v any) (*value.Graph, error) {
	b := &fromGo{heap: value.NewHeap()}
	root, err := b.value(v)
	if err != nil {
		return nil, err
	}
	return value.NewGraph(root, b.heap), nil
}

type fromGo struct {
	heap *value.Heap
	path []string
}

func (b *fromGo) fail(format string, args ...any) error {
	return errors.New(errors.PhaseValidate, errors.KindInvalidData).
		Path(append([]string(nil), b.path...)...).
		Detail(format, args...).
		Build()
}

func (b *fromGo) value(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(x), nil
	case string:
		return value.NewString(x), nil
	case float64:
		return fromFloat(x), nil
	case float32:
		return fromFloat(float64(x)), nil
	case int:
		return fromInt(int64(x)), nil
	case int8:
		return value.Int32(x), nil
	case int16:
		return value.Int32(x), nil
	case int32:
		return value.Int32(x), nil
	case int64:
		return fromInt(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return value.Int32(x), nil
	case uint16:
		return value.Int32(x), nil
	case uint32:
		return fromUint(uint64(x)), nil
	case uint64:
		return fromUint(x), nil
	case *big.Int:
		if x == nil {
			return value.Null{}, nil
		}
		return value.NewBigInt(x), nil
	case big.Int:
		return value.NewBigInt(&x), nil
	case time.Time:
		return b.heap.Add(value.DateFromTime(x)), nil
	case []byte:
		buf := b.heap.Add(&value.ArrayBuffer{Data: append([]byte{}, x...)})
		return b.heap.Add(&value.ArrayBufferView{Buffer: buf, Length: uint32(len(x)), Type: value.ViewUint8}), nil
	case []any:
		arr := value.NewDenseArray()
		ref := b.heap.Add(arr)
		arr.Elements = make([]value.Value, len(x))
		for i, e := range x {
			b.path = append(b.path, fmt.Sprint(i))
			ev, err := b.value(e)
			b.path = b.path[:len(b.path)-1]
			if err != nil {
				return nil, err
			}
			arr.Elements[i] = ev
		}
		arr.Length = uint32(len(x))
		return ref, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return b.object(keys, func(k string) any { return x[k] })
	case *OrderedMap:
		if x == nil {
			return value.Null{}, nil
		}
		return b.object(x.keys, func(k string) any { return x.values[k] })
	}
	return nil, b.fail("unsupported Go type %T", v)
}

func (b *fromGo) object(keys []string, get func(string) any) (value.Value, error) {
	obj := &value.Object{Properties: make([]value.Property, 0, len(keys))}
	ref := b.heap.Add(obj)
	for _, k := range keys {
		b.path = append(b.path, k)
		v, err := b.value(get(k))
		b.path = b.path[:len(b.path)-1]
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, value.Property{Key: value.NewString(k), Value: v})
	}
	return ref, nil
}

func fromFloat(f float64) value.Value {
	if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 && !(f == 0 && math.Signbit(f)) {
		return value.Int32(int32(f))
	}
	return value.Double(f)
}

func fromInt(v int64) value.Value {
	switch {
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return value.Int32(int32(v))
	case v >= -maxSafeInteger && v <= maxSafeInteger:
		return value.Double(float64(v))
	}
	return value.BigIntFromInt64(v)
}

func fromUint(v uint64) value.Value {
	switch {
	case v <= math.MaxInt32:
		return value.Int32(int32(v))
	case v <= maxSafeInteger:
		return value.Double(float64(v))
	}
	return value.NewBigInt(new(big.Int).SetUint64(v))
}
