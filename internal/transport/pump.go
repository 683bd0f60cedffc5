package transport

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/reversi/internal/logger"
	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
)

// readPump 从服务器读取消息
func (c *Client) readPump(l *link) {
	defer c.handleReadExit(l)

	_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		return l.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			log.Printf("消息解析错误: %v", err)
			continue
		}

		c.processMessage(msg)
	}
}

func (c *Client) handleReadExit(l *link) {
	if r := recover(); r != nil {
		logger.LogPanic(r)
	}
	l.close()

	c.mu.Lock()
	current := c.link == l
	if current {
		c.link = nil
	}
	closed := c.closed
	token := c.token
	c.mu.Unlock()

	if !current || closed {
		return
	}

	c.failPending()

	// 重连中的连接失败由重连循环处理
	if c.reconnecting.Load() {
		return
	}
	if token != "" {
		go c.tryReconnect()
		return
	}
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
		log.Printf("连接读取错误: %v", err)
	}
}

// processMessage 分发服务端消息：连接信息、心跳、推送、请求回复
func (c *Client) processMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgConnected:
		payload, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
		if err != nil {
			log.Printf("connected 消息解析失败: %v", err)
			return
		}
		c.mu.Lock()
		if c.identity != "" && c.identity != payload.Identity {
			log.Printf("⚠️ 重连后身份变化: %s -> %s", c.identity, payload.Identity)
		}
		c.identity = payload.Identity
		c.token = payload.ReconnectToken
		if c.ready != nil {
			close(c.ready)
			c.ready = nil
		}
		c.mu.Unlock()

	case protocol.MsgPong:
		payload, err := codec.ParsePayload[protocol.PongPayload](msg)
		if err != nil {
			return
		}
		latency := time.Now().UnixMilli() - payload.ClientTimestamp
		c.latency.Store(latency)
		c.online.Store(int64(payload.Online))
		if c.OnLatencyUpdate != nil {
			c.OnLatencyUpdate(latency)
		}

	case protocol.MsgRoomUpdate:
		payload, err := codec.ParsePayload[protocol.RoomUpdatePayload](msg)
		if err != nil || payload.Record == nil {
			log.Printf("房间推送解析失败: %v", err)
			return
		}
		c.deliver(payload.RoomID, payload.Record)

	default:
		c.routeReply(msg)
	}
}

// replyEnvelope 各类回复共有的 request_id
type replyEnvelope struct {
	RequestID string `json:"request_id"`
}

// routeReply 按 request_id 把回复交给等待中的请求
func (c *Client) routeReply(msg *protocol.Message) {
	env, err := codec.ParsePayload[replyEnvelope](msg)
	if err != nil {
		log.Printf("回复解析失败 (%s): %v", msg.Type, err)
		return
	}

	if env.RequestID != "" {
		c.mu.Lock()
		reply, ok := c.pending[env.RequestID]
		if ok {
			select {
			case reply <- msg:
			default:
			}
		}
		c.mu.Unlock()
		if ok {
			return
		}
	}

	if msg.Type == protocol.MsgError {
		err := replyError(msg)
		log.Printf("服务端错误: %v", err)
		if c.OnError != nil {
			c.OnError(err)
		}
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump(l *link) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		l.close()
		_ = l.conn.Close()
	}()

	for {
		select {
		case data := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-l.done:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = l.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
