// Package transport 通过 WebSocket 连接服务器，对上层提供 room.Store
package transport

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/reversi/internal/game/room"
	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 首次重连间隔
	reconnectInterval = 2 * time.Second
	// 握手超时
	handshakeTimeout = 10 * time.Second

	sendBuffer         = 256
	subscriptionBuffer = 16
)

var (
	ErrClosed         = errors.New("connection closed")
	ErrNotConnected   = errors.New("not connected")
	ErrSendBufferFull = errors.New("send buffer full")
	ErrConnectionLost = errors.New("connection lost before reply")
)

var _ room.Store = (*Client)(nil)

// link 一条底层连接，重连时整体替换
type link struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// close 通知写协程发送关闭帧并断开连接
func (l *link) close() {
	l.once.Do(func() { close(l.done) })
}

// Client WebSocket 客户端，实现 room.Store
type Client struct {
	ServerURL string

	// 回调
	OnError         func(error)            // 服务端主动下发的错误（无 request_id）
	OnClose         func()                 // 连接最终关闭
	OnReconnecting  func(attempt, max int) // 开始第 attempt 次重连
	OnReconnect     func()                 // 重连成功
	OnLatencyUpdate func(latency int64)    // 延迟更新（毫秒）

	mu       sync.Mutex
	link     *link
	identity string
	token    string
	closed   bool
	ready    chan struct{} // 收到 connected 后关闭

	pending map[string]chan *protocol.Message
	subs    map[string]chan *room.Record

	nextRequest    atomic.Int64
	latency        atomic.Int64
	online         atomic.Int64
	reconnecting   atomic.Bool
	reconnectDelay time.Duration
	done           chan struct{}
}

// NewClient 创建客户端，serverURL 形如 ws://host:port/ws
func NewClient(serverURL string) *Client {
	return &Client{
		ServerURL:      serverURL,
		pending:        make(map[string]chan *protocol.Message),
		subs:           make(map[string]chan *room.Record),
		reconnectDelay: reconnectInterval,
		done:           make(chan struct{}),
	}
}

// Connect 连接服务器并等待身份下发
func (c *Client) Connect(ctx context.Context) error {
	return c.dial(ctx, "")
}

// dial 建立新连接，token 非空时请求恢复原身份
func (c *Client) dial(ctx context.Context, token string) error {
	target := c.ServerURL
	if token != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			return err
		}
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		target = u.String()
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}

	l := &link{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	ready := make(chan struct{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	c.link = l
	c.ready = ready
	c.mu.Unlock()

	go c.readPump(l)
	go c.writePump(l)

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		l.close()
		return ctx.Err()
	}
}

// Identity 服务端分配的身份
func (c *Client) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Latency 最近一次心跳往返延迟（毫秒）
func (c *Client) Latency() int64 {
	return c.latency.Load()
}

// Online 最近一次心跳回报的服务器在线连接数
func (c *Client) Online() int {
	return int(c.online.Load())
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.link != nil
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.sendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}

// Close 关闭连接，不再重连
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	l := c.link
	c.link = nil
	close(c.done)

	subs := c.subs
	c.subs = make(map[string]chan *room.Record)
	c.mu.Unlock()

	if l != nil {
		l.close()
	}
	c.failPending()
	for _, ch := range subs {
		close(ch)
	}
}

// sendMessage 编码并放入当前连接的发送队列
func (c *Client) sendMessage(msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.link == nil {
		return ErrNotConnected
	}

	select {
	case c.link.send <- data:
		return nil
	case <-c.link.done:
		return ErrNotConnected
	default:
		return ErrSendBufferFull
	}
}

// request 发送请求并等待同一 request_id 的回复
func (c *Client) request(ctx context.Context, msgType protocol.MessageType, build func(requestID string) any) (*protocol.Message, error) {
	requestID := strconv.FormatInt(c.nextRequest.Add(1), 10)
	reply := make(chan *protocol.Message, 1)

	c.mu.Lock()
	c.pending[requestID] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}()

	msg, err := codec.NewMessage(msgType, build(requestID))
	if err != nil {
		return nil, err
	}
	if err := c.sendMessage(msg); err != nil {
		return nil, err
	}

	select {
	case resp, ok := <-reply:
		if !ok {
			return nil, ErrConnectionLost
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// failPending 连接断开时让所有等待中的请求失败
func (c *Client) failPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]chan *protocol.Message)
	c.mu.Unlock()

	for _, ch := range pending {
		close(ch)
	}
}
