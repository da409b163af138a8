package pool

import (
	"bytes"
	"sync"

	"github.com/tved/tved/internal/constants"
)

// BytesBuffer is there to optimize memory allocations. The editor
// otherwise allocates a lot of memory while reading files and pipes.
var BytesBuffer = sync.Pool{
	New: func() interface{} {
		b := bytes.Buffer{}
		b.Grow(constants.LineBufferInitialCapacity)
		return &b
	},
}

// RecycleBytesBuffer recycles the buffer again.
func RecycleBytesBuffer(b *bytes.Buffer) {
	b.Reset()
	BytesBuffer.Put(b)
}
