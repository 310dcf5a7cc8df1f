package codec

import (
	"bytes"
	"sync"

	"github.com/palemoky/tetris-battle/internal/protocol"
)

const (
	// initialBuffer fits one game state with a 10x20 grid
	initialBuffer = 1 << 10
	// maxPooledBuffer is the largest buffer kept for reuse; bigger ones go to the GC
	maxPooledBuffer = 64 << 10
)

var (
	messages = sync.Pool{
		New: func() any { return new(protocol.Message) },
	}
	buffers = sync.Pool{
		New: func() any {
			b := new(bytes.Buffer)
			b.Grow(initialBuffer)
			return b
		},
	}
)

// GetMessage takes an empty envelope from the pool
func GetMessage() *protocol.Message {
	return messages.Get().(*protocol.Message)
}

// PutMessage clears the envelope and returns it to the pool.
// The payload slice is dropped, it may alias a received frame.
func PutMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	*msg = protocol.Message{}
	messages.Put(msg)
}

// GetBuffer takes an empty frame buffer from the pool
func GetBuffer() *bytes.Buffer {
	return buffers.Get().(*bytes.Buffer)
}

// PutBuffer returns a frame buffer to the pool unless it grew past maxPooledBuffer
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	buffers.Put(buf)
}
