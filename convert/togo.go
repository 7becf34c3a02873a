package convert

import (
	"math"

	"github.com/wippyai/v8value/errors"
	"github.com/wippyai/v8value/value"
)

// maxSparseLength bounds the slice a sparse array is expanded into.
const maxSparseLength = 1 << 20

// maxExpansion bounds how many objects and sparse slots a conversion may
// emit beyond one per heap slot. Shared objects are copied at every place
// they occur, so a small graph can otherwise expand exponentially.
const maxExpansion = 1 << 20

const isoMillis = "2006-01-02T15:04:05.000Z"

// ToGo converts g into nil, bool, float64, string, []byte, []any and
// *OrderedMap values.
//
// Numbers that JSON cannot carry (NaN and the infinities) become the strings
// "NaN", "Infinity" and "-Infinity"; bigints become decimal strings. A Map
// becomes a list of [key, value] pairs and a Set a list of its values.
//
// Shared objects are copied wherever they occur. A graph whose copies would
// exceed its heap size by more than maxExpansion fails with invalid_data.
func ToGo(g *value.Graph) (any, error) {
	c := &toGo{
		heap:   g.Heap,
		active: make(map[value.Ref]bool),
		budget: g.Heap.Len() + maxExpansion,
	}
	return c.value(g.Root)
}

type toGo struct {
	heap   *value.Heap
	active map[value.Ref]bool
	budget int
}

// spend charges n emitted nodes against the budget.
func (c *toGo) spend(n int) error {
	c.budget -= n
	if c.budget < 0 {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Detail("graph expands past %d copied nodes", maxExpansion).
			Build()
	}
	return nil
}

func (c *toGo) value(v value.Value) (any, error) {
	switch x := v.(type) {
	case nil, value.Undefined, value.Null:
		return nil, nil
	case value.Bool:
		return bool(x), nil
	case value.Int32:
		return float64(x), nil
	case value.Uint32:
		return float64(x), nil
	case value.Double:
		return number(float64(x)), nil
	case value.BigInt:
		return x.String(), nil
	case value.String:
		return x.Text(), nil
	case value.Ref:
		return c.ref(x)
	}
	return nil, errors.InvalidData(errors.PhaseValidate, errors.NoOffset, "unknown value type")
}

func number(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

func (c *toGo) ref(ref value.Ref) (any, error) {
	obj, err := c.heap.Get(ref)
	if err != nil {
		return nil, err
	}
	if c.active[ref] {
		return nil, errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Value(uint32(ref)).
			Detail("cycle through %s #%d", obj.Kind(), ref).
			Build()
	}
	if err := c.spend(1); err != nil {
		return nil, err
	}
	c.active[ref] = true
	defer delete(c.active, ref)

	switch o := obj.(type) {
	case *value.Object:
		return c.properties(o.Properties)

	case *value.Array:
		if o.Sparse {
			return c.sparse(o)
		}
		out := make([]any, len(o.Elements))
		for i, e := range o.Elements {
			if out[i], err = c.value(e); err != nil {
				return nil, err
			}
		}
		return out, nil

	case *value.Map:
		out := make([]any, 0, len(o.Entries))
		for _, e := range o.Entries {
			k, err := c.value(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := c.value(e.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, []any{k, v})
		}
		return out, nil

	case *value.Set:
		out := make([]any, len(o.Values))
		for i, v := range o.Values {
			if out[i], err = c.value(v); err != nil {
				return nil, err
			}
		}
		return out, nil

	case *value.Date:
		t, ok := o.AsTime()
		if !ok {
			return nil, nil
		}
		return t.Format(isoMillis), nil

	case *value.RegExp:
		return "/" + o.Pattern.Text() + "/" + o.Flags.String(), nil

	case *value.Error:
		m := NewOrderedMap()
		m.Set("name", o.Name.String())
		if o.Message != nil {
			m.Set("message", o.Message.Text())
		}
		if o.Stack != nil {
			m.Set("stack", o.Stack.Text())
		}
		if o.Cause != nil {
			cause, err := c.value(o.Cause)
			if err != nil {
				return nil, err
			}
			m.Set("cause", cause)
		}
		return m, nil

	case *value.ArrayBuffer:
		return append([]byte{}, o.Data[:o.ByteLength()]...), nil

	case *value.ArrayBufferView:
		buf, ok := c.heap.Lookup(o.Buffer).(*value.ArrayBuffer)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseValidate, errors.NoOffset, "view without an array buffer")
		}
		b := o.Bytes(buf)
		if b == nil {
			return nil, errors.New(errors.PhaseValidate, errors.KindInvalidView).
				Detail("%s overruns its buffer", o.Type).
				Build()
		}
		return append([]byte{}, b...), nil

	case *value.HostObject:
		return append([]byte{}, o.Payload...), nil

	case *value.BooleanObject:
		return o.Value, nil
	case *value.NumberObject:
		return number(o.Value), nil
	case *value.BigIntObject:
		return o.Value.String(), nil
	case *value.StringObject:
		return o.Value.Text(), nil
	}
	return nil, errors.Unsupported(errors.PhaseValidate, errors.NoOffset, obj.Kind().String()+" has no plain Go form")
}

func (c *toGo) properties(props []value.Property) (*OrderedMap, error) {
	m := NewOrderedMap()
	for _, p := range props {
		key, ok := value.PropertyKeyString(p.Key)
		if !ok {
			return nil, errors.InvalidData(errors.PhaseValidate, errors.NoOffset, "invalid property key")
		}
		v, err := c.value(p.Value)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

// sparse expands a sparse array into a slice, keeping only index keys.
func (c *toGo) sparse(a *value.Array) (any, error) {
	if a.Length > maxSparseLength {
		return nil, errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Value(a.Length).
			Detail("sparse array of length %d is too long to expand", a.Length).
			Build()
	}
	if err := c.spend(int(a.Length)); err != nil {
		return nil, err
	}
	out := make([]any, a.Length)
	for _, p := range a.Properties {
		idx, ok := arrayIndex(p.Key)
		if !ok || idx >= a.Length {
			continue
		}
		v, err := c.value(p.Value)
		if err != nil {
			return nil, err
		}
		out[idx] = v
	}
	return out, nil
}

func arrayIndex(k value.Value) (uint32, bool) {
	switch x := k.(type) {
	case value.Int32:
		return uint32(x), x >= 0
	case value.Uint32:
		return uint32(x), true
	case value.Double:
		f := float64(x)
		if f >= 0 && f < math.MaxUint32 && f == math.Trunc(f) {
			return uint32(f), true
		}
	}
	return 0, false
}
