// Package protocol 客户端与服务端之间的消息定义
package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间记录操作
	MsgReadRoom    MessageType = "read_room"   // 读取房间记录
	MsgWriteRoom   MessageType = "write_room"  // 整条写入房间记录
	MsgSubscribe   MessageType = "subscribe"   // 订阅房间更新
	MsgUnsubscribe MessageType = "unsubscribe" // 取消订阅
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功，下发身份
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间记录
	MsgRoomSnapshot MessageType = "room_snapshot" // 读取结果
	MsgWriteAck     MessageType = "write_ack"     // 写入成功
	MsgSubscribed   MessageType = "subscribed"    // 订阅成功
	MsgRoomUpdate   MessageType = "room_update"   // 房间记录推送

	// 错误
	MsgError MessageType = "error" // 错误消息
)
