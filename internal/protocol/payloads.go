package protocol

import "github.com/palemoky/reversi/internal/game/room"

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// ReadRoomPayload 读取房间请求
type ReadRoomPayload struct {
	RequestID string `json:"request_id"`
	RoomID    string `json:"room_id"`
}

// WriteRoomPayload 写入房间请求，记录整条替换
type WriteRoomPayload struct {
	RequestID string       `json:"request_id"`
	RoomID    string       `json:"room_id"`
	Record    *room.Record `json:"record"`
}

// SubscribePayload 订阅房间请求
type SubscribePayload struct {
	RequestID string `json:"request_id"`
	RoomID    string `json:"room_id"`
}

// UnsubscribePayload 取消订阅请求
type UnsubscribePayload struct {
	RoomID string `json:"room_id"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	Identity       string `json:"identity"`        // 本次会话的身份
	ReconnectToken string `json:"reconnect_token"` // 断线后凭此令牌恢复身份
	Resumed        bool   `json:"resumed,omitempty"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务端时间戳（毫秒）
	Online          int   `json:"online"`           // 当前在线连接数
}

// RoomSnapshotPayload 读取结果，房间不存在时 Record 为空
type RoomSnapshotPayload struct {
	RequestID string       `json:"request_id"`
	RoomID    string       `json:"room_id"`
	Record    *room.Record `json:"record,omitempty"`
}

// WriteAckPayload 写入成功
type WriteAckPayload struct {
	RequestID string `json:"request_id"`
	RoomID    string `json:"room_id"`
	Version   int64  `json:"version"`
}

// SubscribedPayload 订阅成功
type SubscribedPayload struct {
	RequestID string `json:"request_id"`
	RoomID    string `json:"room_id"`
}

// RoomUpdatePayload 房间记录推送
type RoomUpdatePayload struct {
	RoomID string       `json:"room_id"`
	Record *room.Record `json:"record"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	RequestID string `json:"request_id,omitempty"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
}
