package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/v8value/value"
)

// treeLine is one visible row of the object browser.
type treeLine struct {
	label string
	val   value.Value
	path  string
	depth int

	expandable bool
	expanded   bool
	// cycle marks a ref that already appears among the row's ancestors.
	cycle bool
}

// tree flattens a graph into rows, expanding refs on demand. Expansion is
// tracked per path, so one object reached twice can be open in one place and
// closed in the other.
type tree struct {
	g        *value.Graph
	expanded map[string]bool
	lines    []treeLine
}

func newTree(g *value.Graph) *tree {
	t := &tree{g: g, expanded: map[string]bool{"": true}}
	t.rebuild()
	return t
}

func (t *tree) rebuild() {
	t.lines = t.lines[:0]
	t.walk("", "", t.g.Root, 0, nil)
}

func (t *tree) walk(label, path string, v value.Value, depth int, stack []value.Ref) {
	line := treeLine{label: label, val: v, path: path, depth: depth}
	ref, isRef := v.(value.Ref)
	var obj value.HeapObject
	if isRef {
		obj = t.g.Heap.Lookup(ref)
		for _, r := range stack {
			if r == ref {
				line.cycle = true
			}
		}
		line.expandable = obj != nil && !line.cycle && len(labelledChildren(obj)) > 0
		line.expanded = line.expandable && t.expanded[path]
	}
	t.lines = append(t.lines, line)
	if !line.expanded {
		return
	}

	stack = append(stack, ref)
	for i, c := range labelledChildren(obj) {
		t.walk(c.label, path+"/"+strconv.Itoa(i), c.val, depth+1, stack)
	}
}

// toggle opens or closes row i and reports whether anything changed.
func (t *tree) toggle(i int) bool {
	if i < 0 || i >= len(t.lines) || !t.lines[i].expandable {
		return false
	}
	p := t.lines[i].path
	t.expanded[p] = !t.expanded[p]
	t.rebuild()
	return true
}

// collapse closes row i, or failing that its parent, and returns the row
// the cursor should move to.
func (t *tree) collapse(i int) int {
	if i < 0 || i >= len(t.lines) {
		return i
	}
	if t.lines[i].expanded {
		t.toggle(i)
		return i
	}
	for j := i - 1; j >= 0; j-- {
		if t.lines[j].depth < t.lines[i].depth {
			t.toggle(j)
			return j
		}
	}
	return i
}

// text renders row i without styling.
func (t *tree) text(i int) string {
	l := t.lines[i]
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", l.depth))
	switch {
	case l.expanded:
		b.WriteString("▾ ")
	case l.expandable:
		b.WriteString("▸ ")
	default:
		b.WriteString("  ")
	}
	b.WriteString(l.label)

	ref, ok := l.val.(value.Ref)
	if !ok {
		b.WriteString(value.FormatScalar(l.val))
		return b.String()
	}
	obj := t.g.Heap.Lookup(ref)
	if obj == nil {
		fmt.Fprintf(&b, "#%d <missing>", ref)
		return b.String()
	}
	fmt.Fprintf(&b, "#%d %s", ref, value.Summary(obj))
	if l.cycle {
		b.WriteString(" (cycle)")
	}
	return b.String()
}

type labelled struct {
	label string
	val   value.Value
}

// labelledChildren lists what a row for obj expands into.
func labelledChildren(obj value.HeapObject) []labelled {
	var out []labelled
	props := func(ps []value.Property) {
		for _, p := range ps {
			out = append(out, labelled{keyLabel(p.Key) + ": ", p.Value})
		}
	}

	switch o := obj.(type) {
	case *value.Object:
		props(o.Properties)
	case *value.Array:
		for i, e := range o.Elements {
			out = append(out, labelled{fmt.Sprintf("[%d]: ", i), e})
		}
		props(o.Properties)
	case *value.Map:
		for i, e := range o.Entries {
			if _, ok := e.Key.(value.Ref); ok {
				out = append(out,
					labelled{fmt.Sprintf("key %d: ", i), e.Key},
					labelled{fmt.Sprintf("value %d: ", i), e.Value})
				continue
			}
			out = append(out, labelled{value.FormatScalar(e.Key) + " => ", e.Value})
		}
	case *value.Set:
		for i, v := range o.Values {
			out = append(out, labelled{fmt.Sprintf("[%d]: ", i), v})
		}
	case *value.Error:
		if o.Stack != nil {
			out = append(out, labelled{"stack: ", *o.Stack})
		}
		if o.Cause != nil {
			out = append(out, labelled{"cause: ", o.Cause})
		}
	case *value.ArrayBufferView:
		out = append(out, labelled{"buffer: ", o.Buffer})
	}
	return out
}

func keyLabel(k value.Value) string {
	if s, ok := k.(value.String); ok {
		return s.Text()
	}
	if name, ok := value.PropertyKeyString(k); ok {
		return "[" + name + "]"
	}
	return value.FormatScalar(k)
}
