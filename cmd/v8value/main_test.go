package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/v8value/errors"
	"github.com/wippyai/v8value/value"
)

// run executes the command tree with an isolated config directory.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		args []string
		want string
	}{
		{"json to hex", `{"a":1}`, []string{"encode", "--out", "hex"}, "ff0f6f22016149027b01\n"},
		{"json to base64", `"hi"`, []string{"encode", "--out", "base64"}, "/w8iAmhp\n"},
		{"json with bom", "\xef\xbb\xbfnull", []string{"encode", "--out", "hex"}, "ff0f30\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.in, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		args []string
		want string
	}{
		{"hex to json", "ff0f 6f 220161 4902 7b01\n", []string{"decode", "--in", "hex", "--out", "json"}, "{\"a\":1}\n"},
		{"hex to dump", "ff0f22026869", []string{"decode", "--in", "hex"}, "\"hi\"\n"},
		{"base64 to json", "/w8iAmhp", []string{"decode", "--in", "base64", "--out", "json"}, "\"hi\"\n"},
		{"raw stdin", "\xff\x0f\x49\x02", []string{"decode", "--out", "json", "-"}, "1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.in, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := `{"name":"x","list":[1,2.5,null,true],"nested":{"k":"日本"}}`
	wire, err := run(t, doc, "encode", "--out", "hex")
	require.NoError(t, err)

	out, err := run(t, wire, "decode", "--in", "hex", "--out", "json")
	require.NoError(t, err)
	assert.Equal(t, doc+"\n", out)
}

func TestDecodeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0x0f, 0x54}, 0600))

	out, err := run(t, "", "decode", "--out", "json", path)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestDecodeErrors(t *testing.T) {
	t.Run("bad hex", func(t *testing.T) {
		_, err := run(t, "zz", "decode", "--in", "hex")
		assert.ErrorContains(t, err, "decode hex input")
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := run(t, "ff0f6f", "decode", "--in", "hex")
		require.Error(t, err)
		assert.Equal(t, errors.KindTruncatedInput, errors.KindOf(err))
	})

	t.Run("unknown output", func(t *testing.T) {
		_, err := run(t, "ff0f30", "decode", "--in", "hex", "--out", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("depth flag", func(t *testing.T) {
		wire, err := run(t, `[[1]]`, "encode", "--out", "hex")
		require.NoError(t, err)

		_, err = run(t, wire, "--max-depth", "1", "decode", "--in", "hex")
		assert.Equal(t, errors.KindDepthLimitExceeded, errors.KindOf(err))

		_, err = run(t, wire, "--max-depth", "2", "decode", "--in", "hex")
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "", "decode", filepath.Join(t.TempDir(), "nope"))
		assert.ErrorContains(t, err, "read file")
	})
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "decode:\n  input: hex\n  output: json\nhost_objects: length-prefixed\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	// A host object with a length-prefixed payload inside an object.
	out, err := run(t, "ff0f 6f 220168 5c 01aa 7b01", "--config", path, "decode")
	require.NoError(t, err)
	assert.Equal(t, "{\"h\":\"Aao=\"}\n", out)

	_, err = run(t, "ff0f 6f 220168 5c 01aa 7b01", "decode", "--in", "hex")
	assert.Equal(t, errors.KindUnsupported, errors.KindOf(err))

	_, err = run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "decode")
	assert.Error(t, err)
}

func TestInspectFallsBackToDump(t *testing.T) {
	out, err := run(t, "ff0f 6f 220161 4902 7b01", "inspect", "--in", "hex")
	require.NoError(t, err)
	assert.Equal(t, "#0 Object(1) {\n  \"a\": 1\n}\n", out)
}

func selfListGraph() *value.Graph {
	h := value.NewHeap()
	obj := &value.Object{}
	root := h.Add(obj)
	list := h.Add(value.NewDenseArray(value.Int32(1), root))
	obj.Properties = []value.Property{{Key: value.NewString("list"), Value: list}}
	return value.NewGraph(root, h)
}

func TestTree(t *testing.T) {
	tr := newTree(selfListGraph())
	require.Len(t, tr.lines, 2)
	assert.Equal(t, "▾ #0 Object(1)", tr.text(0))
	assert.Equal(t, "  ▸ list: #1 Array(2)", tr.text(1))

	assert.False(t, tr.toggle(5))
	require.True(t, tr.toggle(1))
	require.Len(t, tr.lines, 4)
	assert.Equal(t, "      [0]: 1", tr.text(2))
	assert.True(t, tr.lines[3].cycle)
	assert.False(t, tr.lines[3].expandable)
	assert.Contains(t, tr.text(3), "#0 Object(1) (cycle)")

	// Collapsing a leaf closes its parent.
	assert.Equal(t, 1, tr.collapse(2))
	assert.Len(t, tr.lines, 2)
}

func TestInspectModel(t *testing.T) {
	m := newInspectModel(selfListGraph(), "test")
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, m.tree.lines, 4)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 3, m.cursor)

	view := m.View()
	assert.Contains(t, view, "v8value")
	assert.Contains(t, view, "list: #1 Array(2)")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}
