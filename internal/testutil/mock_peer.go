//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/reversi/internal/protocol"
)

// MockPeer 实现 types.Peer 的 mock
type MockPeer struct {
	mock.Mock
}

func (m *MockPeer) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPeer) Context() context.Context {
	args := m.Called()
	return args.Get(0).(context.Context)
}

func (m *MockPeer) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockPeer) Close() {
	m.Called()
}

// RecordingPeer 简单的 mock 客户端，不使用 testify（用于不需要断言调用的测试）。
// 订阅推送来自其他协程，消息列表加锁保护
type RecordingPeer struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	messages []*protocol.Message
	notify   chan struct{}
}

// NewRecordingPeer 创建简单客户端
func NewRecordingPeer(id string) *RecordingPeer {
	ctx, cancel := context.WithCancel(context.Background())
	return &RecordingPeer{
		ID:     id,
		ctx:    ctx,
		cancel: cancel,
		notify: make(chan struct{}, 1),
	}
}

func (m *RecordingPeer) GetID() string            { return m.ID }
func (m *RecordingPeer) Context() context.Context { return m.ctx }
func (m *RecordingPeer) Close()                   { m.cancel() }

func (m *RecordingPeer) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// SentMessages 已收到的消息副本
func (m *RecordingPeer) SentMessages() []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*protocol.Message(nil), m.messages...)
}

// MessagesOfType 指定类型的消息
func (m *RecordingPeer) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, msg := range m.SentMessages() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// Last 最后一条消息，没有时返回 nil
func (m *RecordingPeer) Last() *protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}
