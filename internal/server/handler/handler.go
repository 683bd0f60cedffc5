package handler

import (
	"context"
	"log"
	"sync"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
	"github.com/palemoky/reversi/internal/server/storage"
	"github.com/palemoky/reversi/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Presence types.Presence
	Store    storage.Backend
}

// Handler 消息处理器
type Handler struct {
	presence types.Presence
	store    storage.Backend
	handlers map[protocol.MessageType]handlerFunc

	// 客户端 ID → 房间号 → 取消订阅
	subs   map[string]map[string]context.CancelFunc
	subsMu sync.Mutex
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(peer types.Peer, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		presence: deps.Presence,
		store:    deps.Store,
		subs:     make(map[string]map[string]context.CancelFunc),
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间记录
		protocol.MsgReadRoom:    h.handleReadRoom,
		protocol.MsgWriteRoom:   h.handleWriteRoom,
		protocol.MsgSubscribe:   h.handleSubscribe,
		protocol.MsgUnsubscribe: h.handleUnsubscribe,
	}
}

// Handle 处理消息
func (h *Handler) Handle(peer types.Peer, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(peer, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (来自: %s, Payload长度=%d bytes)", msg.Type, peer.GetID(), len(msg.Payload))
	peer.SendMessage(codec.NewErrorMessage("", &apperrors.GameError{
		Code:    apperrors.CodeInvalidMsg,
		Message: "unknown message type " + string(msg.Type),
	}))
}

// Disconnect 客户端断开时取消其全部订阅
func (h *Handler) Disconnect(peer types.Peer) {
	h.subsMu.Lock()
	subs := h.subs[peer.GetID()]
	delete(h.subs, peer.GetID())
	h.subsMu.Unlock()

	for _, cancel := range subs {
		cancel()
	}
}

// SubscriptionCount 当前订阅总数
func (h *Handler) SubscriptionCount() int {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()

	n := 0
	for _, subs := range h.subs {
		n += len(subs)
	}
	return n
}
