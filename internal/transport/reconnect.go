package transport

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/reversi/internal/logger"
	"github.com/palemoky/reversi/internal/protocol"
)

// 重连退避上限
const maxReconnectBackoff = 30 * time.Second

// tryReconnect 指数退避重连，成功后恢复订阅
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			c.reconnecting.Store(false)
		}
	}()

	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	defer c.reconnecting.Store(false)

	backoff := c.reconnectDelay
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, maxReconnectAttempts)
		}

		select {
		case <-time.After(backoff):
		case <-c.done:
			return
		}

		// 计算下一次退避时间
		backoff = min(backoff*2, maxReconnectBackoff)

		c.mu.Lock()
		token := c.token
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		err := c.dial(ctx, token)
		cancel()
		if err != nil {
			log.Printf("重连失败 (%d/%d): %v", attempt, maxReconnectAttempts, err)
			continue
		}

		log.Printf("✅ 重连成功")
		go c.resubscribe()
		if c.OnReconnect != nil {
			c.OnReconnect()
		}
		return
	}

	log.Printf("❌ 重连失败，已达最大尝试次数")
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

// resubscribe 在新连接上重新订阅，并补发断线期间可能错过的当前记录
func (c *Client) resubscribe() {
	c.mu.Lock()
	rooms := make([]string, 0, len(c.subs))
	for id := range c.subs {
		rooms = append(rooms, id)
	}
	c.mu.Unlock()

	for _, id := range rooms {
		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		resp, err := c.request(ctx, protocol.MsgSubscribe, func(requestID string) any {
			return protocol.SubscribePayload{RequestID: requestID, RoomID: id}
		})
		if err == nil && resp.Type == protocol.MsgError {
			err = replyError(resp)
		}
		if err != nil {
			cancel()
			log.Printf("重新订阅房间 %s 失败: %v", id, err)
			continue
		}

		rec, err := c.ReadRoom(ctx, id)
		cancel()
		if err != nil {
			log.Printf("重新读取房间 %s 失败: %v", id, err)
			continue
		}
		if rec != nil {
			c.deliver(id, rec)
		}
	}
}
