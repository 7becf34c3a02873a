package codec

import (
	"go.uber.org/zap"

	wire "github.com/wippyai/v8value/internal/binary"
	"github.com/wippyai/v8value/value"
)

// DefaultMaxDepth bounds composite nesting during decode.
const DefaultMaxDepth = 256

// HostReader is the view of the input stream handed to a HostObjectDelegate.
// It reads from the byte following the host object tag.
type HostReader interface {
	ReadByte() (byte, error)
	ReadBytes(n int) ([]byte, error)
	ReadVarint32() (uint32, error)
	ReadDouble() (float64, error)
	Remaining() int
}

// HostObjectDelegate reads and writes the embedder-defined payload that
// follows a host object tag. The payload is stored verbatim on
// value.HostObject, so WriteHostObject usually returns it unchanged.
type HostObjectDelegate interface {
	ReadHostObject(r HostReader) ([]byte, error)
	WriteHostObject(obj *value.HostObject) ([]byte, error)
}

// Options configures a Deserializer or Serializer.
type Options struct {
	// HostObjects handles the host object tag. Without it decoding a host
	// object fails and encoding writes the stored payload as is.
	HostObjects HostObjectDelegate

	// TransferredArrayBuffers supplies the contents of buffers that were
	// moved out of band, keyed by transfer ID.
	TransferredArrayBuffers map[uint32]*value.ArrayBuffer

	// Logger overrides the package logger for this instance.
	Logger *zap.Logger

	// MaxDepth limits composite nesting on decode. Zero means DefaultMaxDepth.
	MaxDepth int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}

// LengthPrefixedHost is a HostObjectDelegate for payloads framed as a
// varint byte length followed by that many bytes.
type LengthPrefixedHost struct{}

func (LengthPrefixedHost) ReadHostObject(r HostReader) ([]byte, error) {
	n, err := r.ReadVarint32()
	if err != nil {
		return nil, err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, len(b)+5)
	payload = wire.AppendVarint32(payload, n)
	return append(payload, b...), nil
}

func (LengthPrefixedHost) WriteHostObject(obj *value.HostObject) ([]byte, error) {
	return obj.Payload, nil
}

