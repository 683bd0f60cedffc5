package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/logger"
	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	// 发出关闭帧后等待对端回应的时间
	closeGrace = 2 * time.Second

	// 完整房间记录约 1.5KB
	maxFrameSize = 8 << 10
	outboxSize   = 256

	// 被限流丢弃的消息超过此数后断开
	maxDroppedMessages = 5
)

// Client 一条已分配身份的 WebSocket 连接
type Client struct {
	ID string // 随 connected 消息下发的身份
	IP string

	server *Server
	conn   *websocket.Conn
	outbox chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	closed     bool
	closeFrame []byte // 发送队列排空后写出的关闭帧
}

// NewClient 包装已升级的连接，identity 由会话管理器分配
func NewClient(s *Server, conn *websocket.Conn, identity string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:     identity,
		server: s,
		conn:   conn,
		outbox: make(chan []byte, outboxSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) GetID() string { return c.ID }

// Context 连接关闭时取消，订阅与存储请求都挂在它上面
func (c *Client) Context() context.Context { return c.ctx }

// serve 启动读写协程
func (c *Client) serve() {
	go c.writeLoop()
	go c.readLoop()
}

func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.detach()
		c.awaitClose()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("读取错误 (%s): %v", c.ID, err)
			}
			return
		}
		deliver, keep := c.admit()
		if !keep {
			c.closeWith(websocket.ClosePolicyViolation, "rate limit exceeded")
			return
		}
		if deliver {
			c.dispatch(frame)
		}
	}
}

// admit 限流检查。deliver 为 false 时丢弃本条消息，keep 为 false 时断开连接
func (c *Client) admit() (deliver, keep bool) {
	v, dropped := c.server.flood.take(c.ID)
	switch v {
	case verdictWarn:
		c.SendMessage(codec.NewErrorMessageWithText(apperrors.CodeRateLimit, "slow down"))
	case verdictDrop:
		if dropped > maxDroppedMessages {
			log.Printf("🚫 %s (IP: %s) 多次超速，断开连接", c.ID, c.IP)
			return false, false
		}
		log.Printf("⚠️ %s (IP: %s) 消息过于频繁", c.ID, c.IP)
		c.SendMessage(codec.NewErrorMessageWithText(apperrors.CodeRateLimit, "too many messages"))
		return false, true
	}
	return true, true
}

// awaitClose 丢弃剩余帧，直到对端回应关闭帧或超时。
// 接收缓冲区留有未读数据时关闭 TCP 连接会发出 RST，对端可能丢掉尚未读取的回复
func (c *Client) awaitClose() {
	_ = c.conn.SetReadDeadline(time.Now().Add(closeGrace))
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (c *Client) dispatch(frame []byte) {
	msg, err := codec.Decode(frame)
	if err != nil {
		log.Printf("消息解析错误 (%s): %v", c.ID, err)
		c.SendMessage(codec.NewErrorMessageWithText(apperrors.CodeInvalidMsg, "malformed frame"))
		return
	}
	c.server.handler.Handle(c, msg)
	codec.PutMessage(msg)
}

// writeLoop 发送队列关闭后先写完剩余消息再写关闭帧，连接由读协程关闭
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		var (
			kind = websocket.BinaryMessage
			data []byte
		)
		select {
		case frame, ok := <-c.outbox:
			if !ok {
				c.mu.RLock()
				closeFrame := c.closeFrame
				c.mu.RUnlock()
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, closeFrame)
				// 读协程可能仍阻塞在 ReadMessage 上
				_ = c.conn.SetReadDeadline(time.Now().Add(closeGrace))
				return
			}
			data = frame
		case <-ticker.C:
			kind = websocket.PingMessage
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			// 唤醒读协程
			_ = c.conn.Close()
			return
		}
	}
}

// SendMessage 编码后放入发送队列，订阅推送会从其他协程调用。
// 队列满说明对端读得太慢，直接断开
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		log.Printf("消息编码错误: %v", err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.outbox <- data:
	default:
		log.Printf("%s 发送队列已满", c.ID)
		go c.Close()
	}
}

// detach 读循环退出后清理订阅、限流与在线状态，会话保留等待凭令牌重连
func (c *Client) detach() {
	c.Close()
	c.server.handler.Disconnect(c)
	c.server.flood.forget(c.ID)
	c.server.unregisterClient(c)
	c.server.sessions.Release(c.ID)
}

// Close 正常关闭连接，可重复调用
func (c *Client) Close() {
	c.closeWith(websocket.CloseNormalClosure, "")
}

// closeWith 关闭发送队列并取消连接上下文。写协程发完已排队的消息后以 code 关闭连接
func (c *Client) closeWith(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.closeFrame = websocket.FormatCloseMessage(code, reason)
	c.cancel()
	close(c.outbox)
}
