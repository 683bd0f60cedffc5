// Package types 服务端各层共享的连接抽象，供 handler 与 server 互不依赖
package types

import (
	"context"

	"github.com/palemoky/reversi/internal/protocol"
)

// Presence 在线状态查询，由 server 实现
type Presence interface {
	OnlineCount() int
}

// Peer 一条已分配身份的客户端连接
type Peer interface {
	GetID() string
	// Context 连接断开时取消
	Context() context.Context
	SendMessage(msg *protocol.Message)
	Close()
}
