// Package codec 消息的二进制帧编码。
//
// 帧采用 protobuf 线格式：字段 1 为消息类型（string），
// 字段 2 为 JSON 编码的 payload（bytes）。
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/protocol"
)

const (
	fieldType    protowire.Number = 1
	fieldPayload protowire.Number = 2
)

// ErrEmptyType 帧中缺少消息类型
var ErrEmptyType = errors.New("frame has no message type")

// NewMessage 创建一个新消息
// 注意: 使用完毕后可调用 PutMessage 归还对象到池
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := GetMessage()
	msg.Type = msgType

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为帧
func Encode(m *protocol.Message) ([]byte, error) {
	if m == nil || m.Type == "" {
		return nil, ErrEmptyType
	}

	buf := getFrameBuffer()
	defer putFrameBuffer(buf)

	b := buf.AvailableBuffer()
	b = protowire.AppendTag(b, fieldType, protowire.BytesType)
	b = protowire.AppendString(b, string(m.Type))
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	buf.Write(b)

	return bytes.Clone(buf.Bytes()), nil
}

// Decode 从帧解码消息，未知字段被跳过
// 注意: 使用完毕后可调用 PutMessage 归还对象到池
func Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			PutMessage(msg)
			return nil, fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldType && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				PutMessage(msg)
				return nil, fmt.Errorf("decode type: %w", protowire.ParseError(n))
			}
			msg.Type = protocol.MessageType(v)
			data = data[n:]
		case num == fieldPayload && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				PutMessage(msg)
				return nil, fmt.Errorf("decode payload: %w", protowire.ParseError(n))
			}
			msg.Payload = bytes.Clone(v) // 复制 payload 避免引用
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				PutMessage(msg)
				return nil, fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrEmptyType
	}
	return msg, nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return &payload, nil
}

// NewErrorMessage 由错误创建错误消息，非 GameError 使用未知错误码
func NewErrorMessage(requestID string, err error) *protocol.Message {
	var gameErr *apperrors.GameError
	payload := protocol.ErrorPayload{RequestID: requestID, Code: apperrors.CodeUnknown, Message: err.Error()}
	if errors.As(err, &gameErr) {
		payload.Code = gameErr.Code
		payload.Message = gameErr.Message
	}
	msg, _ := NewMessage(protocol.MsgError, payload)
	return msg
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	msg, _ := NewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}
