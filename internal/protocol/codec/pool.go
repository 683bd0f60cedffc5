package codec

import (
	"bytes"
	"sync"

	"github.com/palemoky/reversi/internal/protocol"
)

const (
	// 房间记录帧通常在 1KB 以内
	frameBufferSize = 1024
	// 超过该容量的缓冲区不回收，避免一次大帧长期占用内存
	maxPooledFrame = 64 * 1024
)

// pool 带归还前重置的类型化 sync.Pool
type pool[T any] struct {
	p     sync.Pool
	reset func(T) bool // 返回 false 时丢弃该对象
}

func newPool[T any](newFn func() T, reset func(T) bool) *pool[T] {
	return &pool[T]{
		p:     sync.Pool{New: func() any { return newFn() }},
		reset: reset,
	}
}

func (p *pool[T]) get() T {
	return p.p.Get().(T)
}

func (p *pool[T]) put(v T) {
	if p.reset(v) {
		p.p.Put(v)
	}
}

var (
	messages = newPool(
		func() *protocol.Message { return &protocol.Message{} },
		func(m *protocol.Message) bool {
			m.Type = ""
			m.Payload = nil
			return true
		},
	)

	frames = newPool(
		func() *bytes.Buffer {
			buf := new(bytes.Buffer)
			buf.Grow(frameBufferSize)
			return buf
		},
		func(buf *bytes.Buffer) bool {
			if buf.Cap() > maxPooledFrame {
				return false
			}
			buf.Reset()
			return true
		},
	)
)

// GetMessage 从池中取出空消息
func GetMessage() *protocol.Message {
	return messages.get()
}

// PutMessage 归还消息，调用方之后不得再使用它
func PutMessage(msg *protocol.Message) {
	if msg != nil {
		messages.put(msg)
	}
}

func getFrameBuffer() *bytes.Buffer {
	return frames.get()
}

func putFrameBuffer(buf *bytes.Buffer) {
	if buf != nil {
		frames.put(buf)
	}
}
