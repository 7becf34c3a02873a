package codec

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/v8value/backref"
	"github.com/wippyai/v8value/errors"
	wire "github.com/wippyai/v8value/internal/binary"
	"github.com/wippyai/v8value/internal/tag"
	"github.com/wippyai/v8value/value"
)

// maxBigIntBytes is the largest digit length the bitfield can describe.
const maxBigIntBytes = int(tag.BigIntByteLengthMask >> 1)

// Serializer turns a value graph into wire bytes.
// It holds only configuration and is safe for concurrent use.
type Serializer struct {
	opts Options
}

// NewSerializer creates a Serializer with the given options.
func NewSerializer(opts Options) *Serializer {
	return &Serializer{opts: opts}
}

// NewSerializerWithDefaults creates a Serializer with DefaultOptions.
func NewSerializerWithDefaults() *Serializer {
	return NewSerializer(DefaultOptions())
}

// Options returns the configuration.
func (s *Serializer) Options() Options {
	return s.opts
}

// Serialize writes the header followed by g's root value. Each heap object
// is written once; later occurrences become references to its object ID.
func (s *Serializer) Serialize(g *value.Graph) ([]byte, error) {
	if g == nil {
		return nil, errors.InvalidData(errors.PhaseEncode, errors.NoOffset, "nil graph")
	}
	heap := g.Heap
	if heap == nil {
		heap = value.NewHeap()
	}

	w := getWriter()
	defer putWriter(w)

	e := &encodeState{
		w:     w,
		heap:  heap,
		table: backref.NewEncodeTable(),
		opts:  &s.opts,
	}
	w.Byte(byte(tag.Version))
	w.WriteVarint32(tag.CurrentVersion)

	log := s.opts.logger()
	if err := e.writeValue(g.Root); err != nil {
		log.Debug("encode failed", zap.Error(err))
		return nil, err
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())
	log.Debug("encoded", zap.Int("bytes", len(out)), zap.Int("objects", e.table.Len()))
	return out, nil
}

// encodeState is the per-call writer state.
type encodeState struct {
	w     *wire.Writer
	heap  *value.Heap
	table *backref.EncodeTable
	opts  *Options
	path  []string
}

func (e *encodeState) push(seg string) { e.path = append(e.path, seg) }
func (e *encodeState) pop()            { e.path = e.path[:len(e.path)-1] }

func (e *encodeState) currentPath() []string {
	return append([]string(nil), e.path...)
}

func (e *encodeState) invalid(format string, args ...any) error {
	return errors.New(errors.PhaseEncode, errors.KindInvalidData).
		Path(e.currentPath()...).
		Detail(format, args...).
		Build()
}

func (e *encodeState) writeTag(t tag.Tag) {
	e.w.Byte(byte(t))
}

func (e *encodeState) writeValue(v value.Value) error {
	switch x := v.(type) {
	case value.Undefined:
		e.writeTag(tag.Undefined)
	case value.Null:
		e.writeTag(tag.Null)
	case value.Bool:
		if x {
			e.writeTag(tag.True)
		} else {
			e.writeTag(tag.False)
		}
	case value.Int32:
		e.writeTag(tag.Int32)
		e.w.WriteZigZag32(int32(x))
	case value.Uint32:
		e.writeTag(tag.Uint32)
		e.w.WriteVarint32(uint32(x))
	case value.Double:
		e.writeTag(tag.Double)
		e.w.WriteDouble(float64(x))
	case value.BigInt:
		e.writeTag(tag.BigInt)
		return e.writeBigIntBody(x)
	case value.String:
		return e.writeString(x)
	case value.Ref:
		return e.writeRef(x)
	case nil:
		return e.invalid("missing value")
	default:
		return e.invalid("unsupported value type %T", v)
	}
	return nil
}

func (e *encodeState) writeBigIntBody(b value.BigInt) error {
	digits := b.Bytes()
	if len(digits) > maxBigIntBytes {
		return e.invalid("bigint of %d bytes is too large", len(digits))
	}
	bitfield := uint32(len(digits)) << 1
	if b.Sign() < 0 {
		bitfield |= tag.BigIntSignMask
	}
	e.w.WriteVarint32(bitfield)
	e.w.WriteBytes(digits)
	return nil
}

func (e *encodeState) writeString(s value.String) error {
	switch s.Encoding {
	case value.OneByte, value.UTF8:
		if uint64(len(s.Bytes)) > uint64(^uint32(0)) {
			return e.invalid("string of %d bytes is too long", len(s.Bytes))
		}
		if s.Encoding == value.OneByte {
			e.writeTag(tag.OneByteString)
		} else {
			e.writeTag(tag.UTF8String)
		}
		e.w.WriteVarint32(uint32(len(s.Bytes)))
		e.w.WriteBytes(s.Bytes)
	case value.TwoByte:
		n := uint64(len(s.Units)) * 2
		if n > uint64(^uint32(0)) {
			return e.invalid("string of %d code units is too long", len(s.Units))
		}
		byteLen := uint32(n)
		// Code units start on an even offset from the beginning of the output.
		if (e.w.Len()+1+wire.VarintSize(byteLen))&1 != 0 {
			e.writeTag(tag.Padding)
		}
		e.writeTag(tag.TwoByteString)
		e.w.WriteVarint32(byteLen)
		for _, u := range s.Units {
			e.w.Byte(byte(u))
			e.w.Byte(byte(u >> 8))
		}
	default:
		return e.invalid("unknown string encoding %d", s.Encoding)
	}
	return nil
}

func (e *encodeState) lookup(ref value.Ref) (value.HeapObject, error) {
	obj := e.heap.Lookup(ref)
	if obj == nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindUnknownReference).
			Path(e.currentPath()...).
			Value(uint32(ref)).
			Detail("ref %d does not name a heap object", ref).
			Build()
	}
	return obj, nil
}

func (e *encodeState) writeRef(ref value.Ref) error {
	obj, err := e.lookup(ref)
	if err != nil {
		return err
	}

	// A view is preceded by its buffer the first time it is written, so the
	// buffer takes the lower object ID.
	if view, ok := obj.(*value.ArrayBufferView); ok && !e.table.Seen(ref) {
		if _, err := e.viewBuffer(view); err != nil {
			return err
		}
		if err := e.writeRef(view.Buffer); err != nil {
			return err
		}
	}

	id, seen := e.table.Track(ref)
	if seen {
		e.writeTag(tag.ObjectReference)
		e.w.WriteVarint32(id)
		return nil
	}
	return e.writeObject(obj)
}

func (e *encodeState) viewBuffer(view *value.ArrayBufferView) (*value.ArrayBuffer, error) {
	obj, err := e.lookup(view.Buffer)
	if err != nil {
		return nil, err
	}
	switch b := obj.(type) {
	case *value.ArrayBuffer:
		return b, nil
	case *value.SharedArrayBuffer:
		return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Path(e.currentPath()...).
			Detail("view over a shared array buffer").
			Build()
	}
	return nil, e.invalid("view buffer is %s, not an ArrayBuffer", obj.Kind())
}

func (e *encodeState) writeObject(obj value.HeapObject) error {
	switch o := obj.(type) {
	case *value.Object:
		e.writeTag(tag.BeginObject)
		if err := e.writeProperties(o.Properties); err != nil {
			return err
		}
		e.writeTag(tag.EndObject)
		e.w.WriteVarint32(uint32(len(o.Properties)))

	case *value.Array:
		return e.writeArray(o)

	case *value.Map:
		e.writeTag(tag.BeginMap)
		for i, entry := range o.Entries {
			e.push(strconv.Itoa(i) + ".key")
			err := e.writeValue(entry.Key)
			e.pop()
			if err != nil {
				return err
			}
			e.push(strconv.Itoa(i) + ".value")
			err = e.writeValue(entry.Value)
			e.pop()
			if err != nil {
				return err
			}
		}
		e.writeTag(tag.EndMap)
		e.w.WriteVarint32(uint32(2 * len(o.Entries)))

	case *value.Set:
		e.writeTag(tag.BeginSet)
		for i, v := range o.Values {
			e.push(strconv.Itoa(i))
			err := e.writeValue(v)
			e.pop()
			if err != nil {
				return err
			}
		}
		e.writeTag(tag.EndSet)
		e.w.WriteVarint32(uint32(len(o.Values)))

	case *value.Date:
		e.writeTag(tag.Date)
		e.w.WriteDouble(o.Time)

	case *value.RegExp:
		if err := o.Flags.Validate(); err != nil {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Path(e.currentPath()...).
				Value(uint32(o.Flags)).
				Cause(err).
				Detail("invalid regexp flags").
				Build()
		}
		e.writeTag(tag.RegExp)
		if err := e.writeString(o.Pattern); err != nil {
			return err
		}
		e.w.WriteVarint32(uint32(o.Flags))

	case *value.Error:
		return e.writeError(o)

	case *value.ArrayBuffer:
		if o.Detached {
			return e.invalid("detached array buffer")
		}
		n := uint32(len(o.Data))
		if o.Resizable {
			if o.MaxByteLength < n {
				return e.invalid("resizable buffer max length %d below length %d", o.MaxByteLength, n)
			}
			e.writeTag(tag.ResizableArrayBuffer)
			e.w.WriteVarint32(n)
			e.w.WriteVarint32(o.MaxByteLength)
		} else {
			e.writeTag(tag.ArrayBuffer)
			e.w.WriteVarint32(n)
		}
		e.w.WriteBytes(o.Data)

	case *value.ArrayBufferView:
		return e.writeView(o)

	case *value.SharedArrayBuffer:
		e.writeTag(tag.SharedArrayBuffer)
		e.w.WriteVarint32(o.TransferID)

	case *value.WasmModuleTransfer:
		e.writeTag(tag.WasmModuleTransfer)
		e.w.WriteVarint32(o.TransferID)

	case *value.HostObject:
		return e.writeHostObject(o)

	case *value.BooleanObject:
		if o.Value {
			e.writeTag(tag.TrueObject)
		} else {
			e.writeTag(tag.FalseObject)
		}

	case *value.NumberObject:
		e.writeTag(tag.NumberObject)
		e.w.WriteDouble(o.Value)

	case *value.BigIntObject:
		e.writeTag(tag.BigIntObject)
		return e.writeBigIntBody(o.Value)

	case *value.StringObject:
		e.writeTag(tag.StringObject)
		return e.writeString(o.Value)

	default:
		return e.invalid("unsupported heap object %T", obj)
	}
	return nil
}

func (e *encodeState) writeProperties(props []value.Property) error {
	for _, p := range props {
		name, ok := value.PropertyKeyString(p.Key)
		if !ok {
			kind := "missing"
			if p.Key != nil {
				kind = p.Key.Kind().String()
			}
			return e.invalid("%s is not a valid property key", kind)
		}
		if err := e.writeValue(p.Key); err != nil {
			return err
		}
		e.push(name)
		err := e.writeValue(p.Value)
		e.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *encodeState) writeArray(a *value.Array) error {
	if a.Sparse {
		e.writeTag(tag.BeginSparseArray)
		e.w.WriteVarint32(a.Length)
		if err := e.writeProperties(a.Properties); err != nil {
			return err
		}
		e.writeTag(tag.EndSparseArray)
		e.w.WriteVarint32(uint32(len(a.Properties)))
		e.w.WriteVarint32(a.Length)
		return nil
	}

	if uint64(len(a.Elements)) > uint64(^uint32(0)) {
		return e.invalid("array of %d elements is too long", len(a.Elements))
	}
	length := uint32(len(a.Elements))
	e.writeTag(tag.BeginDenseArray)
	e.w.WriteVarint32(length)
	for i, v := range a.Elements {
		if v == nil {
			e.writeTag(tag.TheHole)
			continue
		}
		e.push(strconv.Itoa(i))
		err := e.writeValue(v)
		e.pop()
		if err != nil {
			return err
		}
	}
	if err := e.writeProperties(a.Properties); err != nil {
		return err
	}
	e.writeTag(tag.EndDenseArray)
	e.w.WriteVarint32(uint32(len(a.Properties)))
	e.w.WriteVarint32(length)
	return nil
}

func (e *encodeState) writeView(v *value.ArrayBufferView) error {
	buf, err := e.viewBuffer(v)
	if err != nil {
		return err
	}
	sub, ok := viewTags[v.Type]
	if !ok {
		return e.invalid("unknown view type %d", v.Type)
	}
	byteLen := uint64(v.Length) * uint64(v.Type.ElementSize())
	if uint64(v.ByteOffset)+byteLen > uint64(buf.ByteLength()) {
		return errors.New(errors.PhaseEncode, errors.KindInvalidView).
			Path(e.currentPath()...).
			Detail("%s of %d bytes at offset %d overruns buffer of %d bytes",
				v.Type, byteLen, v.ByteOffset, buf.ByteLength()).
			Build()
	}
	if v.ByteOffset%v.Type.ElementSize() != 0 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidView).
			Path(e.currentPath()...).
			Detail("%s offset %d not a multiple of %d", v.Type, v.ByteOffset, v.Type.ElementSize()).
			Build()
	}

	var flags uint32
	if v.LengthTracking {
		flags |= tag.ViewFlagLengthTracking
	}
	if v.BackedByResizable {
		flags |= tag.ViewFlagBackedByResizable
	}
	e.writeTag(tag.ArrayBufferView)
	e.w.WriteVarint32(uint32(sub))
	e.w.WriteVarint32(v.ByteOffset)
	e.w.WriteVarint32(uint32(byteLen))
	e.w.WriteVarint32(flags)
	return nil
}

func (e *encodeState) writeError(o *value.Error) error {
	e.writeTag(tag.Error)
	if o.Name != value.ErrorPlain {
		proto, ok := errorPrototypeTags[o.Name]
		if !ok {
			return e.invalid("unknown error name %d", o.Name)
		}
		e.w.WriteVarint32(uint32(proto))
	}
	if o.Message != nil {
		e.w.WriteVarint32(uint32(tag.ErrorMessage))
		if err := e.writeString(*o.Message); err != nil {
			return err
		}
	}
	if o.Cause != nil {
		e.w.WriteVarint32(uint32(tag.ErrorCause))
		e.push("cause")
		err := e.writeValue(o.Cause)
		e.pop()
		if err != nil {
			return err
		}
	}
	if o.Stack != nil {
		e.w.WriteVarint32(uint32(tag.ErrorStack))
		if err := e.writeString(*o.Stack); err != nil {
			return err
		}
	}
	e.w.WriteVarint32(uint32(tag.ErrorEnd))
	return nil
}

func (e *encodeState) writeHostObject(o *value.HostObject) error {
	payload := o.Payload
	if d := e.opts.HostObjects; d != nil {
		var err error
		if payload, err = d.WriteHostObject(o); err != nil {
			return errors.UnencodableHostObject(e.currentPath(), err)
		}
	}
	if payload == nil {
		return errors.UnencodableHostObject(e.currentPath(),
			fmt.Errorf("host object has no payload"))
	}
	e.writeTag(tag.HostObject)
	e.w.WriteBytes(payload)
	return nil
}
