package codec

import (
	"sync"

	"github.com/wippyai/v8value/internal/binary"
)

const (
	// Pool limits to prevent memory bloat
	writerInitCap = 256
	writerMaxCap  = 1 << 20
)

var writerPool = sync.Pool{
	New: func() any {
		return binary.NewWriter(writerInitCap)
	},
}

func getWriter() *binary.Writer {
	w := writerPool.Get().(*binary.Writer)
	w.Reset()
	return w
}

func putWriter(w *binary.Writer) {
	if w == nil || w.Cap() > writerMaxCap {
		return // reject oversized
	}
	w.Reset()
	writerPool.Put(w)
}
