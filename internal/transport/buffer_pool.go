package transport

import (
	"sync"
)

// bufferPool holds reusable receive buffers for UDPTransport.Receive, sized
// well past the 512-byte classic UDP reply and the largest EDNS0 (RFC 6891)
// UDP payload a resolver typically advertises (4096 bytes), so a response
// carrying an OPT record never truncates. A sync.Pool keeps the hot receive
// path allocation-free after warmup.
var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 9000)
		return &buf
	},
}

// GetBuffer returns a pointer to a pooled receive buffer. The caller must
// call PutBuffer to return it (use defer).
func GetBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// PutBuffer returns a buffer to the pool. The caller must not use the buffer
// after calling PutBuffer.
func PutBuffer(bufPtr *[]byte) {
	// Zero before returning so a previous response's bytes never leak into
	// a buffer reused for an unrelated receive.
	buf := *bufPtr
	for i := range buf {
		buf[i] = 0
	}

	bufferPool.Put(bufPtr)
}
