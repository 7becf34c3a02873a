package value

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// String renders the graph with Dump.
func (g *Graph) String() string {
	var b strings.Builder
	_ = Dump(&b, g)
	return b.String()
}

// Dump writes a multi-line debug rendering of g. The first occurrence of an
// object is labelled #N with its heap index; later occurrences print *N.
func Dump(w io.Writer, g *Graph) error {
	d := &dumper{g: g, seen: make(map[Ref]bool)}
	d.value(g.Root, 0)
	d.b.WriteByte('\n')
	_, err := io.WriteString(w, d.b.String())
	return err
}

// FormatScalar renders a value that is not a Ref on one line.
func FormatScalar(v Value) string {
	switch x := v.(type) {
	case nil:
		return "<hole>"
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(x))
	case Int32:
		return strconv.FormatInt(int64(x), 10)
	case Uint32:
		return strconv.FormatUint(uint64(x), 10)
	case Double:
		return NumberString(float64(x))
	case BigInt:
		return x.String() + "n"
	case String:
		return quote(x)
	case Ref:
		return "*" + strconv.FormatUint(uint64(x), 10)
	}
	return fmt.Sprintf("%v", v)
}

func quote(s String) string {
	q := strconv.Quote(s.Text())
	switch s.Encoding {
	case TwoByte:
		return "u" + q
	case UTF8:
		return "w" + q
	}
	return q
}

type dumper struct {
	g    *Graph
	seen map[Ref]bool
	b    strings.Builder
}

func (d *dumper) indent(n int) {
	for i := 0; i < n; i++ {
		d.b.WriteString("  ")
	}
}

func (d *dumper) value(v Value, depth int) {
	ref, ok := v.(Ref)
	if !ok {
		d.b.WriteString(FormatScalar(v))
		return
	}
	if d.seen[ref] {
		fmt.Fprintf(&d.b, "*%d", ref)
		return
	}
	d.seen[ref] = true
	obj := d.g.Heap.Lookup(ref)
	if obj == nil {
		fmt.Fprintf(&d.b, "#%d <missing>", ref)
		return
	}
	fmt.Fprintf(&d.b, "#%d ", ref)
	d.object(obj, depth)
}

func (d *dumper) props(props []Property, depth int) {
	for _, p := range props {
		d.indent(depth + 1)
		d.value(p.Key, depth+1)
		d.b.WriteString(": ")
		d.value(p.Value, depth+1)
		d.b.WriteByte('\n')
	}
}

// Summary returns a one-line description of obj without its children.
func Summary(obj HeapObject) string {
	switch o := obj.(type) {
	case *Object:
		return fmt.Sprintf("Object(%d)", len(o.Properties))
	case *Array:
		if o.Sparse {
			return fmt.Sprintf("SparseArray(%d)", o.Length)
		}
		return fmt.Sprintf("Array(%d)", len(o.Elements))
	case *Map:
		return fmt.Sprintf("Map(%d)", len(o.Entries))
	case *Set:
		return fmt.Sprintf("Set(%d)", len(o.Values))
	case *Date:
		if t, ok := o.AsTime(); ok {
			return "Date(" + t.Format("2006-01-02T15:04:05.000Z07:00") + ")"
		}
		return "Date(Invalid)"
	case *RegExp:
		return "/" + o.Pattern.Text() + "/" + o.Flags.String()
	case *Error:
		s := o.Name.String()
		if o.Message != nil {
			s += ": " + o.Message.Text()
		}
		return s
	case *ArrayBuffer:
		s := fmt.Sprintf("ArrayBuffer(%d)", o.ByteLength())
		if o.Resizable {
			s += fmt.Sprintf(" max=%d", o.MaxByteLength)
		}
		if o.Detached {
			s += " detached"
		}
		return s
	case *ArrayBufferView:
		return fmt.Sprintf("%s(%d) offset=%d", o.Type, o.Length, o.ByteOffset)
	case *SharedArrayBuffer:
		return fmt.Sprintf("SharedArrayBuffer(transfer=%d)", o.TransferID)
	case *WasmModuleTransfer:
		return fmt.Sprintf("WebAssembly.Module(transfer=%d)", o.TransferID)
	case *HostObject:
		return fmt.Sprintf("HostObject(%d bytes)", len(o.Payload))
	case *BooleanObject:
		return fmt.Sprintf("Boolean(%t)", o.Value)
	case *NumberObject:
		return "Number(" + NumberString(o.Value) + ")"
	case *BigIntObject:
		return "BigInt(" + o.Value.String() + "n)"
	case *StringObject:
		return "String(" + quote(o.Value) + ")"
	}
	return obj.Kind().String()
}

func (d *dumper) object(obj HeapObject, depth int) {
	d.b.WriteString(Summary(obj))
	switch o := obj.(type) {
	case *Object:
		if len(o.Properties) == 0 {
			d.b.WriteString(" {}")
			return
		}
		d.b.WriteString(" {\n")
		d.props(o.Properties, depth)
		d.indent(depth)
		d.b.WriteByte('}')
	case *Array:
		if len(o.Elements) == 0 && len(o.Properties) == 0 {
			d.b.WriteString(" []")
			return
		}
		d.b.WriteString(" [\n")
		for _, e := range o.Elements {
			d.indent(depth + 1)
			d.value(e, depth+1)
			d.b.WriteByte('\n')
		}
		d.props(o.Properties, depth)
		d.indent(depth)
		d.b.WriteByte(']')
	case *Map:
		if len(o.Entries) == 0 {
			d.b.WriteString(" {}")
			return
		}
		d.b.WriteString(" {\n")
		for _, e := range o.Entries {
			d.indent(depth + 1)
			d.value(e.Key, depth+1)
			d.b.WriteString(" => ")
			d.value(e.Value, depth+1)
			d.b.WriteByte('\n')
		}
		d.indent(depth)
		d.b.WriteByte('}')
	case *Set:
		if len(o.Values) == 0 {
			d.b.WriteString(" {}")
			return
		}
		d.b.WriteString(" {\n")
		for _, v := range o.Values {
			d.indent(depth + 1)
			d.value(v, depth+1)
			d.b.WriteByte('\n')
		}
		d.indent(depth)
		d.b.WriteByte('}')
	case *Error:
		if o.Cause != nil {
			d.b.WriteString(" cause: ")
			d.value(o.Cause, depth)
		}
	case *ArrayBufferView:
		d.b.WriteString(" of ")
		d.value(o.Buffer, depth)
	}
}
