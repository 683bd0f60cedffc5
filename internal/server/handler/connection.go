package handler

import (
	"time"

	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
	"github.com/palemoky/reversi/internal/types"
)

// handlePing 原样带回客户端时间戳，附上服务端时间与在线人数
func (h *Handler) handlePing(peer types.Peer, msg *protocol.Message) {
	ping, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	pong := protocol.PongPayload{
		ClientTimestamp: ping.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}
	if h.presence != nil {
		pong.Online = h.presence.OnlineCount()
	}
	peer.SendMessage(codec.MustNewMessage(protocol.MsgPong, pong))
}
