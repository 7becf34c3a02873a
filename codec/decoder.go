package codec

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/v8value/backref"
	"github.com/wippyai/v8value/errors"
	wire "github.com/wippyai/v8value/internal/binary"
	"github.com/wippyai/v8value/internal/tag"
	"github.com/wippyai/v8value/value"
)

// Deserializer turns wire bytes into a value graph.
// It holds only configuration and is safe for concurrent use.
type Deserializer struct {
	opts Options
}

// NewDeserializer creates a Deserializer with the given options.
func NewDeserializer(opts Options) *Deserializer {
	return &Deserializer{opts: opts}
}

// NewDeserializerWithDefaults creates a Deserializer with DefaultOptions.
func NewDeserializerWithDefaults() *Deserializer {
	return NewDeserializer(DefaultOptions())
}

// Options returns the configuration.
func (d *Deserializer) Options() Options {
	return d.opts
}

// Deserialize decodes one value, header included. Bytes after the root value
// are ignored. On failure no partial graph is returned and the error carries
// the offset where decoding stopped.
func (d *Deserializer) Deserialize(data []byte) (*value.Graph, error) {
	log := d.opts.logger()
	s := &decodeState{
		r:        wire.NewReader(data),
		table:    backref.NewDecodeTable(),
		opts:     &d.opts,
		maxDepth: d.opts.maxDepth(),
	}

	if err := s.readHeader(); err != nil {
		log.Debug("decode header failed", zap.Error(err))
		return nil, err
	}

	root, err := s.readValue()
	if err != nil {
		log.Debug("decode failed", zap.Uint32("version", s.version), zap.Error(err))
		return nil, err
	}

	heap, err := s.table.Finish()
	if err != nil {
		return nil, withOffset(err, s.r.Position())
	}

	if rest := s.r.Remaining(); rest > 0 {
		log.Debug("trailing bytes ignored", zap.Int("bytes", rest))
	}
	log.Debug("decoded",
		zap.Uint32("version", s.version),
		zap.Int("bytes", len(data)),
		zap.Int("objects", heap.Len()))

	return value.NewGraph(root, heap), nil
}

// decodeState is the per-call parser state.
type decodeState struct {
	r        *wire.Reader
	table    *backref.DecodeTable
	opts     *Options
	version  uint32
	depth    int
	maxDepth int
}

// withOffset stamps off on a structured error that has no position yet.
func withOffset(err error, off int) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Offset == errors.NoOffset {
		e.Offset = off
	}
	return err
}

func (s *decodeState) readHeader() error {
	start := s.r.Position()
	b, err := s.r.ReadByte()
	if err != nil {
		return err
	}
	if tag.Tag(b) != tag.Version {
		return errors.New(errors.PhaseDecode, errors.KindUnsupportedVersion).
			Offset(start).
			Value(b).
			Detail("missing version marker, found 0x%02x", b).
			Build()
	}
	v, err := s.r.ReadVarint32()
	if err != nil {
		return err
	}
	if v < tag.MinVersion || v > tag.MaxVersion {
		return errors.UnsupportedVersion(start, v, tag.MinVersion, tag.MaxVersion)
	}
	s.version = v
	return nil
}

// readTag skips padding and consumes the next tag, returning its offset.
func (s *decodeState) readTag() (tag.Tag, int, error) {
	s.r.SkipWhile(byte(tag.Padding))
	off := s.r.Position()
	b, err := s.r.ReadByte()
	return tag.Tag(b), off, err
}

// peekTag skips padding and reports the next tag without consuming it.
func (s *decodeState) peekTag() (tag.Tag, bool) {
	s.r.SkipWhile(byte(tag.Padding))
	b, ok := s.r.Peek()
	return tag.Tag(b), ok
}

// consumeTag consumes t if it is the next tag.
func (s *decodeState) consumeTag(t tag.Tag) bool {
	s.r.SkipWhile(byte(tag.Padding))
	return s.r.SkipByte(byte(t))
}

func (s *decodeState) enter(off int) error {
	if s.depth >= s.maxDepth {
		return errors.DepthLimitExceeded(off, s.maxDepth)
	}
	s.depth++
	return nil
}

func (s *decodeState) leave() {
	s.depth--
}

func (s *decodeState) bind(id uint32, obj value.HeapObject, off int) error {
	if err := s.table.Bind(id, obj); err != nil {
		return withOffset(err, off)
	}
	return nil
}

// readValue reads one value and, when it is an ArrayBuffer, the view that
// may follow it.
func (s *decodeState) readValue() (value.Value, error) {
	v, err := s.readTagged()
	if err != nil {
		return nil, err
	}
	ref, ok := v.(value.Ref)
	if !ok {
		return v, nil
	}

	obj := s.table.Lookup(ref)
	switch obj.(type) {
	case *value.ArrayBuffer, *value.SharedArrayBuffer:
	default:
		return v, nil
	}
	if t, ok := s.peekTag(); !ok || t != tag.ArrayBufferView {
		return v, nil
	}
	off := s.r.Position()
	_, _ = s.r.ReadByte()

	buf, ok := obj.(*value.ArrayBuffer)
	if !ok {
		return nil, errors.Unsupported(errors.PhaseDecode, off, "view over a shared array buffer")
	}
	return s.readView(off, ref, buf)
}

func (s *decodeState) readTagged() (value.Value, error) {
	t, off, err := s.readTag()
	if err != nil {
		return nil, err
	}
	for t == tag.VerifyObjectCount {
		if _, err := s.r.ReadVarint32(); err != nil {
			return nil, err
		}
		if t, off, err = s.readTag(); err != nil {
			return nil, err
		}
	}

	switch t {
	case tag.Undefined:
		return value.Undefined{}, nil
	case tag.Null:
		return value.Null{}, nil
	case tag.True:
		return value.Bool(true), nil
	case tag.False:
		return value.Bool(false), nil
	case tag.Int32:
		n, err := s.r.ReadZigZag32()
		if err != nil {
			return nil, err
		}
		return value.Int32(n), nil
	case tag.Uint32:
		n, err := s.r.ReadVarint32()
		if err != nil {
			return nil, err
		}
		return value.Uint32(n), nil
	case tag.Double:
		f, err := s.r.ReadDouble()
		if err != nil {
			return nil, err
		}
		return value.Double(f), nil
	case tag.BigInt:
		b, err := s.readBigInt()
		if err != nil {
			return nil, err
		}
		return b, nil
	case tag.UTF8String, tag.OneByteString, tag.TwoByteString:
		str, err := s.readStringBody(t, off)
		if err != nil {
			return nil, err
		}
		return str, nil
	case tag.ObjectReference:
		return s.readReference(off)
	case tag.BeginObject:
		return s.readObject(off)
	case tag.BeginSparseArray:
		return s.readSparseArray(off)
	case tag.BeginDenseArray:
		return s.readDenseArray(off)
	case tag.BeginMap:
		return s.readMap(off)
	case tag.BeginSet:
		return s.readSet(off)
	case tag.Error:
		return s.readError(off)
	case tag.Date:
		ms, err := s.r.ReadDouble()
		if err != nil {
			return nil, err
		}
		return s.table.Add(value.NewDate(ms)), nil
	case tag.TrueObject:
		return s.table.Add(&value.BooleanObject{Value: true}), nil
	case tag.FalseObject:
		return s.table.Add(&value.BooleanObject{Value: false}), nil
	case tag.NumberObject:
		f, err := s.r.ReadDouble()
		if err != nil {
			return nil, err
		}
		return s.table.Add(&value.NumberObject{Value: f}), nil
	case tag.BigIntObject:
		b, err := s.readBigInt()
		if err != nil {
			return nil, err
		}
		return s.table.Add(&value.BigIntObject{Value: b}), nil
	case tag.StringObject:
		str, err := s.readString()
		if err != nil {
			return nil, err
		}
		return s.table.Add(&value.StringObject{Value: str}), nil
	case tag.RegExp:
		return s.readRegExp()
	case tag.ArrayBuffer:
		return s.readArrayBuffer(false)
	case tag.ResizableArrayBuffer:
		return s.readArrayBuffer(true)
	case tag.ArrayBufferTransfer:
		return s.readTransferredArrayBuffer(off)
	case tag.SharedArrayBuffer:
		id, err := s.r.ReadVarint32()
		if err != nil {
			return nil, err
		}
		return s.table.Add(&value.SharedArrayBuffer{TransferID: id}), nil
	case tag.WasmModuleTransfer:
		id, err := s.r.ReadVarint32()
		if err != nil {
			return nil, err
		}
		return s.table.Add(&value.WasmModuleTransfer{TransferID: id}), nil
	case tag.HostObject:
		return s.readHostObject(off)
	case tag.WasmMemoryTransfer:
		return nil, errors.Unsupported(errors.PhaseDecode, off, "WebAssembly.Memory transfer")
	case tag.SharedObject:
		return nil, errors.Unsupported(errors.PhaseDecode, off, "shared object")
	case tag.TheHole:
		return nil, errors.New(errors.PhaseDecode, errors.KindUnknownTag).
			Offset(off).
			Value(byte(t)).
			Detail("hole outside a dense array").
			Build()
	}
	return nil, errors.UnknownTag(off, "value", byte(t))
}

func (s *decodeState) readBigInt() (value.BigInt, error) {
	bitfield, err := s.r.ReadVarint32()
	if err != nil {
		return value.BigInt{}, err
	}
	n := int((bitfield & tag.BigIntByteLengthMask) >> 1)
	digits, err := s.r.ReadBytes(n)
	if err != nil {
		return value.BigInt{}, err
	}
	return value.BigIntFromBytes(bitfield&tag.BigIntSignMask != 0, digits), nil
}

// readString reads a value that must be a string.
func (s *decodeState) readString() (value.String, error) {
	t, off, err := s.readTag()
	if err != nil {
		return value.String{}, err
	}
	for t == tag.VerifyObjectCount {
		if _, err := s.r.ReadVarint32(); err != nil {
			return value.String{}, err
		}
		if t, off, err = s.readTag(); err != nil {
			return value.String{}, err
		}
	}
	switch t {
	case tag.UTF8String, tag.OneByteString, tag.TwoByteString:
		return s.readStringBody(t, off)
	}
	return value.String{}, errors.UnknownTag(off, "string", byte(t))
}

func (s *decodeState) readStringBody(t tag.Tag, off int) (value.String, error) {
	n, err := s.r.ReadVarint32()
	if err != nil {
		return value.String{}, err
	}
	if t == tag.TwoByteString && n%2 != 0 {
		return value.String{}, errors.InvalidData(errors.PhaseDecode, off,
			fmt.Sprintf("two-byte string has odd byte length %d", n))
	}
	data, err := s.r.ReadBytes(int(n))
	if err != nil {
		return value.String{}, err
	}
	switch t {
	case tag.UTF8String:
		return value.UTF8String(append([]byte(nil), data...)), nil
	case tag.OneByteString:
		return value.OneByteString(append([]byte(nil), data...)), nil
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return value.TwoByteString(units), nil
}

func (s *decodeState) readReference(off int) (value.Value, error) {
	id, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	ref, err := s.table.Resolve(id)
	if err != nil {
		return nil, withOffset(err, off)
	}
	return ref, nil
}

// readProperties reads key/value pairs up to and including end. It returns
// the offset of the end tag.
func (s *decodeState) readProperties(end tag.Tag) ([]value.Property, int, error) {
	var props []value.Property
	for {
		t, ok := s.peekTag()
		if !ok {
			return nil, 0, errors.TruncatedInput(s.r.Position(), 1, 0)
		}
		if t == end {
			off := s.r.Position()
			_, _ = s.r.ReadByte()
			return props, off, nil
		}

		keyOff := s.r.Position()
		key, err := s.readValue()
		if err != nil {
			return nil, 0, err
		}
		if !value.IsPropertyKey(key) {
			return nil, 0, errors.InvalidData(errors.PhaseDecode, keyOff,
				fmt.Sprintf("%s is not a valid property key", key.Kind()))
		}
		val, err := s.readValue()
		if err != nil {
			return nil, 0, err
		}
		props = append(props, value.Property{Key: key, Value: val})
	}
}

func (s *decodeState) readObject(off int) (value.Value, error) {
	if err := s.enter(off); err != nil {
		return nil, err
	}
	defer s.leave()

	id := s.table.Allocate()
	props, endOff, err := s.readProperties(tag.EndObject)
	if err != nil {
		return nil, err
	}
	declared, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	if declared != uint32(len(props)) {
		return nil, errors.LengthMismatch(endOff, "object properties", declared, uint32(len(props)))
	}
	if err := s.bind(id, &value.Object{Properties: props}, off); err != nil {
		return nil, err
	}
	return value.Ref(id), nil
}

func (s *decodeState) readSparseArray(off int) (value.Value, error) {
	length, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	if err := s.enter(off); err != nil {
		return nil, err
	}
	defer s.leave()

	id := s.table.Allocate()
	props, endOff, err := s.readProperties(tag.EndSparseArray)
	if err != nil {
		return nil, err
	}
	if err := s.readArrayEnd(endOff, uint32(len(props)), length); err != nil {
		return nil, err
	}
	if err := s.bind(id, value.NewSparseArray(length, props...), off); err != nil {
		return nil, err
	}
	return value.Ref(id), nil
}

func (s *decodeState) readDenseArray(off int) (value.Value, error) {
	length, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	// Every element takes at least one byte, so a length beyond the input
	// is rejected before anything is allocated.
	if err := s.r.Need(int(length)); err != nil {
		return nil, err
	}
	if err := s.enter(off); err != nil {
		return nil, err
	}
	defer s.leave()

	id := s.table.Allocate()
	elems := make([]value.Value, 0, length)
	for i := uint32(0); i < length; i++ {
		if s.consumeTag(tag.TheHole) {
			elems = append(elems, nil)
			continue
		}
		v, err := s.readValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}

	props, endOff, err := s.readProperties(tag.EndDenseArray)
	if err != nil {
		return nil, err
	}
	if err := s.readArrayEnd(endOff, uint32(len(props)), length); err != nil {
		return nil, err
	}
	arr := value.NewDenseArray(elems...)
	arr.Properties = props
	if err := s.bind(id, arr, off); err != nil {
		return nil, err
	}
	return value.Ref(id), nil
}

// readArrayEnd reads the property count and length after an array end tag.
func (s *decodeState) readArrayEnd(endOff int, numProps, length uint32) error {
	declaredProps, err := s.r.ReadVarint32()
	if err != nil {
		return err
	}
	declaredLength, err := s.r.ReadVarint32()
	if err != nil {
		return err
	}
	if declaredProps != numProps {
		return errors.LengthMismatch(endOff, "array properties", declaredProps, numProps)
	}
	if declaredLength != length {
		return errors.LengthMismatch(endOff, "array length", declaredLength, length)
	}
	return nil
}

func (s *decodeState) readMap(off int) (value.Value, error) {
	if err := s.enter(off); err != nil {
		return nil, err
	}
	defer s.leave()

	id := s.table.Allocate()
	m := &value.Map{}
	for {
		t, ok := s.peekTag()
		if !ok {
			return nil, errors.TruncatedInput(s.r.Position(), 1, 0)
		}
		if t == tag.EndMap {
			break
		}
		k, err := s.readValue()
		if err != nil {
			return nil, err
		}
		v, err := s.readValue()
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, value.Entry{Key: k, Value: v})
	}
	endOff := s.r.Position()
	_, _ = s.r.ReadByte()

	declared, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	if actual := uint32(2 * len(m.Entries)); declared != actual {
		return nil, errors.LengthMismatch(endOff, "map entries", declared, actual)
	}
	if err := s.bind(id, m, off); err != nil {
		return nil, err
	}
	return value.Ref(id), nil
}

func (s *decodeState) readSet(off int) (value.Value, error) {
	if err := s.enter(off); err != nil {
		return nil, err
	}
	defer s.leave()

	id := s.table.Allocate()
	set := &value.Set{}
	for {
		t, ok := s.peekTag()
		if !ok {
			return nil, errors.TruncatedInput(s.r.Position(), 1, 0)
		}
		if t == tag.EndSet {
			break
		}
		v, err := s.readValue()
		if err != nil {
			return nil, err
		}
		set.Values = append(set.Values, v)
	}
	endOff := s.r.Position()
	_, _ = s.r.ReadByte()

	declared, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	if declared != uint32(len(set.Values)) {
		return nil, errors.LengthMismatch(endOff, "set values", declared, uint32(len(set.Values)))
	}
	if err := s.bind(id, set, off); err != nil {
		return nil, err
	}
	return value.Ref(id), nil
}

func (s *decodeState) readRegExp() (value.Value, error) {
	pattern, err := s.readString()
	if err != nil {
		return nil, err
	}
	flagsOff := s.r.Position()
	raw, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	flags := value.RegExpFlags(raw)
	if err := flags.Validate(); err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Offset(flagsOff).
			Value(raw).
			Cause(err).
			Detail("invalid regexp flags").
			Build()
	}
	return s.table.Add(&value.RegExp{Pattern: pattern, Flags: flags}), nil
}

func (s *decodeState) readArrayBuffer(resizable bool) (value.Value, error) {
	off := s.r.Position()
	n, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	buf := &value.ArrayBuffer{Resizable: resizable}
	if resizable {
		maxLen, err := s.r.ReadVarint32()
		if err != nil {
			return nil, err
		}
		if maxLen < n {
			return nil, errors.InvalidView(off,
				fmt.Sprintf("resizable buffer max length %d below length %d", maxLen, n))
		}
		buf.MaxByteLength = maxLen
	}
	if buf.Data, err = s.r.ReadBytesCopy(int(n)); err != nil {
		return nil, err
	}
	return s.table.Add(buf), nil
}

func (s *decodeState) readTransferredArrayBuffer(off int) (value.Value, error) {
	id, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	src, ok := s.opts.TransferredArrayBuffers[id]
	if !ok || src == nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnknownReference).
			Offset(off).
			Value(id).
			Detail("no transferred array buffer with id %d", id).
			Build()
	}
	buf := *src
	buf.Data = append([]byte(nil), src.Data...)
	return s.table.Add(&buf), nil
}

func (s *decodeState) readView(off int, bufRef value.Ref, buf *value.ArrayBuffer) (value.Value, error) {
	sub, err := s.r.ReadVarint8()
	if err != nil {
		return nil, err
	}
	byteOffset, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	byteLength, err := s.r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	var flags uint32
	if s.version >= tag.ViewFlagsVersion {
		if flags, err = s.r.ReadVarint32(); err != nil {
			return nil, err
		}
	}

	kind, ok := viewKinds[tag.ViewTag(sub)]
	if !ok {
		return nil, errors.InvalidView(off, fmt.Sprintf("unknown view subtag 0x%02x", sub))
	}
	size := kind.ElementSize()
	total := buf.ByteLength()
	switch {
	case byteOffset > total:
		return nil, errors.InvalidView(off,
			fmt.Sprintf("%s offset %d beyond buffer of %d bytes", kind, byteOffset, total))
	case byteLength > total-byteOffset:
		return nil, errors.InvalidView(off,
			fmt.Sprintf("%s of %d bytes at offset %d overruns buffer of %d bytes", kind, byteLength, byteOffset, total))
	case byteOffset%size != 0:
		return nil, errors.InvalidView(off,
			fmt.Sprintf("%s offset %d not a multiple of %d", kind, byteOffset, size))
	case byteLength%size != 0:
		return nil, errors.InvalidView(off,
			fmt.Sprintf("%s byte length %d not a multiple of %d", kind, byteLength, size))
	}

	view := &value.ArrayBufferView{
		Buffer:            bufRef,
		ByteOffset:        byteOffset,
		Length:            byteLength / size,
		Type:              kind,
		LengthTracking:    flags&tag.ViewFlagLengthTracking != 0,
		BackedByResizable: flags&tag.ViewFlagBackedByResizable != 0,
	}
	return s.table.Add(view), nil
}

func (s *decodeState) readHostObject(off int) (value.Value, error) {
	if s.opts.HostObjects == nil {
		return nil, errors.Unsupported(errors.PhaseDecode, off, "host object without a delegate")
	}
	id := s.table.Allocate()
	payload, err := s.opts.HostObjects.ReadHostObject(s.r)
	if err != nil {
		if errors.KindOf(err) != "" {
			return nil, err
		}
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Offset(off).
			Cause(err).
			Detail("host object delegate failed").
			Build()
	}
	if err := s.bind(id, &value.HostObject{Payload: payload}, off); err != nil {
		return nil, err
	}
	return value.Ref(id), nil
}

func (s *decodeState) readError(off int) (value.Value, error) {
	if err := s.enter(off); err != nil {
		return nil, err
	}
	defer s.leave()

	id := s.table.Allocate()
	e := &value.Error{}
	for {
		subOff := s.r.Position()
		sub, err := s.r.ReadVarint8()
		if err != nil {
			return nil, err
		}
		st := tag.ErrorTag(sub)
		if name, ok := errorPrototypes[st]; ok {
			e.Name = name
			continue
		}
		switch st {
		case tag.ErrorMessage:
			msg, err := s.readString()
			if err != nil {
				return nil, err
			}
			e.Message = &msg
		case tag.ErrorStack:
			stack, err := s.readString()
			if err != nil {
				return nil, err
			}
			e.Stack = &stack
		case tag.ErrorCause:
			cause, err := s.readValue()
			if err != nil {
				return nil, err
			}
			e.Cause = cause
		case tag.ErrorEnd:
			if err := s.bind(id, e, off); err != nil {
				return nil, err
			}
			return value.Ref(id), nil
		default:
			return nil, errors.UnknownTag(subOff, "error", sub)
		}
	}
}
