package transport

import (
	"context"
	"fmt"
	"log"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/room"
	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
)

// ReadRoom 读取房间记录，不存在时返回 (nil, nil)
func (c *Client) ReadRoom(ctx context.Context, id string) (*room.Record, error) {
	resp, err := c.request(ctx, protocol.MsgReadRoom, func(requestID string) any {
		return protocol.ReadRoomPayload{RequestID: requestID, RoomID: id}
	})
	if err != nil {
		return nil, err
	}

	switch resp.Type {
	case protocol.MsgRoomSnapshot:
		payload, err := codec.ParsePayload[protocol.RoomSnapshotPayload](resp)
		if err != nil {
			return nil, err
		}
		return payload.Record, nil
	case protocol.MsgError:
		return nil, replyError(resp)
	default:
		return nil, fmt.Errorf("unexpected reply %s to read_room", resp.Type)
	}
}

// WriteRoom 整条写入房间记录
func (c *Client) WriteRoom(ctx context.Context, id string, rec *room.Record) error {
	resp, err := c.request(ctx, protocol.MsgWriteRoom, func(requestID string) any {
		return protocol.WriteRoomPayload{RequestID: requestID, RoomID: id, Record: rec}
	})
	if err != nil {
		return err
	}

	switch resp.Type {
	case protocol.MsgWriteAck:
		return nil
	case protocol.MsgError:
		return replyError(resp)
	default:
		return fmt.Errorf("unexpected reply %s to write_room", resp.Type)
	}
}

// Subscribe 订阅房间记录推送。ctx 结束时取消订阅并关闭通道。
// 断线重连后会自动重新订阅，并补发一次当前记录
func (c *Client) Subscribe(ctx context.Context, id string) (<-chan *room.Record, error) {
	resp, err := c.request(ctx, protocol.MsgSubscribe, func(requestID string) any {
		return protocol.SubscribePayload{RequestID: requestID, RoomID: id}
	})
	if err != nil {
		return nil, err
	}
	switch resp.Type {
	case protocol.MsgSubscribed:
	case protocol.MsgError:
		return nil, replyError(resp)
	default:
		return nil, fmt.Errorf("unexpected reply %s to subscribe", resp.Type)
	}

	ch := make(chan *room.Record, subscriptionBuffer)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, nil
	}
	// 同一房间只保留最新的订阅
	if old, ok := c.subs[id]; ok {
		close(old)
	}
	c.subs[id] = ch
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
			return
		}

		c.mu.Lock()
		cur, ok := c.subs[id]
		if ok && cur == ch {
			delete(c.subs, id)
			close(ch)
		}
		c.mu.Unlock()

		if ok && cur == ch {
			if err := c.sendMessage(codec.MustNewMessage(protocol.MsgUnsubscribe, protocol.UnsubscribePayload{RoomID: id})); err != nil {
				log.Printf("取消订阅房间 %s 失败: %v", id, err)
			}
		}
	}()

	return ch, nil
}

// deliver 把推送交给订阅者。缓冲区满时丢弃最旧的一条，记录是整条快照，只需保留最新的
func (c *Client) deliver(id string, rec *room.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.subs[id]
	if !ok {
		return
	}
	for {
		select {
		case ch <- rec:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// replyError 将错误消息还原为 apperrors 中的错误
func replyError(msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	if err != nil {
		return err
	}
	return apperrors.FromCode(payload.Code, payload.Message)
}
