package v8value

import (
	"fmt"

	"github.com/wippyai/v8value/codec"
	"github.com/wippyai/v8value/value"
)

var (
	defaultDeserializer = codec.NewDeserializerWithDefaults()
	defaultSerializer   = codec.NewSerializerWithDefaults()
)

// Deserialize decodes data with default options.
func Deserialize(data []byte) (*value.Graph, error) {
	return defaultDeserializer.Deserialize(data)
}

// Serialize encodes g with default options.
func Serialize(g *value.Graph) ([]byte, error) {
	return defaultSerializer.Serialize(g)
}

// DisplayMode selects how a display generator renders a decoded graph.
// Generators are external; this package only names the modes.
type DisplayMode uint8

const (
	// DisplayRepl is human-readable text as a console would print it.
	DisplayRepl DisplayMode = iota
	// DisplayEval is source text that rebuilds the value, sharing included.
	DisplayEval
	// DisplayExpression is a single expression fragment.
	DisplayExpression
)

var displayNames = [...]string{
	DisplayRepl:       "repl",
	DisplayEval:       "eval",
	DisplayExpression: "expression",
}

func (m DisplayMode) String() string {
	if int(m) < len(displayNames) {
		return displayNames[m]
	}
	return fmt.Sprintf("DisplayMode(%d)", uint8(m))
}

// ParseDisplayMode returns the mode named s.
func ParseDisplayMode(s string) (DisplayMode, error) {
	for i, name := range displayNames {
		if name == s {
			return DisplayMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown display mode %q", s)
}

func (m DisplayMode) MarshalText() ([]byte, error) {
	if int(m) >= len(displayNames) {
		return nil, fmt.Errorf("invalid display mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *DisplayMode) UnmarshalText(text []byte) error {
	mode, err := ParseDisplayMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
