package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/config"
	"github.com/palemoky/reversi/internal/game/room"
	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
	"github.com/palemoky/reversi/internal/server/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory

	store := storage.NewMemoryStore()
	s := New(cfg, store)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, store, ts
}

// wsConn 测试用的协议连接
type wsConn struct {
	t        *testing.T
	conn     *websocket.Conn
	identity string
	token    string
	resumed  bool
}

func dial(t *testing.T, ts *httptest.Server) *wsConn {
	t.Helper()
	return dialWithToken(t, ts, "")
}

func dialWithToken(t *testing.T, ts *httptest.Server, token string) *wsConn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	c := &wsConn{t: t, conn: conn}
	msg := c.read()
	require.Equal(t, protocol.MsgConnected, msg.Type)
	p, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
	require.NoError(t, err)
	require.NotEmpty(t, p.Identity)
	c.identity = p.Identity
	c.token = p.ReconnectToken
	c.resumed = p.Resumed
	return c
}

func (c *wsConn) send(msgType protocol.MessageType, payload any) {
	c.t.Helper()
	data, err := codec.Encode(codec.MustNewMessage(msgType, payload))
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.BinaryMessage, data))
}

func (c *wsConn) read() *protocol.Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	msg, err := codec.Decode(data)
	require.NoError(c.t, err)
	return msg
}

func TestServer_ConnectAndPing(t *testing.T) {
	t.Parallel()

	s, _, ts := newTestServer(t)
	c := dial(t, ts)

	assert.Eventually(t, func() bool { return s.OnlineCount() == 1 }, time.Second, 10*time.Millisecond)

	c.send(protocol.MsgPing, protocol.PingPayload{Timestamp: 7})
	msg := c.read()
	assert.Equal(t, protocol.MsgPong, msg.Type)

	_ = c.conn.Close()
	assert.Eventually(t, func() bool { return s.OnlineCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServer_ReconnectKeepsIdentity(t *testing.T) {
	t.Parallel()

	s, _, ts := newTestServer(t)
	first := dial(t, ts)
	require.NotEmpty(t, first.token)
	assert.False(t, first.resumed)

	// 在线时令牌不能被另一个连接使用
	other := dialWithToken(t, ts, first.token)
	assert.NotEqual(t, first.identity, other.identity)
	_ = other.conn.Close()

	_ = first.conn.Close()
	assert.Eventually(t, func() bool { return !s.sessions.Online(first.identity) }, time.Second, 10*time.Millisecond)

	again := dialWithToken(t, ts, first.token)
	assert.Equal(t, first.identity, again.identity)
	assert.True(t, again.resumed)
	assert.True(t, s.sessions.Online(first.identity))
}

func TestServer_RoomRoundTrip(t *testing.T) {
	t.Parallel()

	s, store, ts := newTestServer(t)
	host := dial(t, ts)
	guest := dial(t, ts)
	assert.NotEqual(t, host.identity, guest.identity)

	created := room.NewRecord(host.identity)
	host.send(protocol.MsgWriteRoom, protocol.WriteRoomPayload{RequestID: "1", RoomID: "4321", Record: created})
	ack := host.read()
	require.Equal(t, protocol.MsgWriteAck, ack.Type)

	host.send(protocol.MsgSubscribe, protocol.SubscribePayload{RequestID: "2", RoomID: "4321"})
	require.Equal(t, protocol.MsgSubscribed, host.read().Type)

	joined := created.Clone()
	joined.Guest = guest.identity
	joined.Turn = host.identity
	joined.Status = room.StatusRunning
	joined.Version++
	guest.send(protocol.MsgWriteRoom, protocol.WriteRoomPayload{RequestID: "3", RoomID: "4321", Record: joined})
	require.Equal(t, protocol.MsgWriteAck, guest.read().Type)

	update := host.read()
	require.Equal(t, protocol.MsgRoomUpdate, update.Type)
	p, err := codec.ParsePayload[protocol.RoomUpdatePayload](update)
	require.NoError(t, err)
	assert.Equal(t, joined, p.Record)

	// 客人不能在房主的回合写入
	moved := joined.Clone()
	moved.Version++
	guest.send(protocol.MsgWriteRoom, protocol.WriteRoomPayload{RequestID: "4", RoomID: "4321", Record: moved})
	errMsg := guest.read()
	require.Equal(t, protocol.MsgError, errMsg.Type)
	e, err := codec.ParsePayload[protocol.ErrorPayload](errMsg)
	require.NoError(t, err)
	assert.Equal(t, apperrors.CodeNotYourTurn, e.Code)
	assert.Equal(t, "4", e.RequestID)

	stored, err := store.ReadRoom(context.Background(), "4321")
	require.NoError(t, err)
	assert.Equal(t, joined, stored)

	_ = host.conn.Close()
	assert.Eventually(t, func() bool { return s.handler.SubscriptionCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServer_MalformedFrame(t *testing.T) {
	t.Parallel()

	_, _, ts := newTestServer(t)
	c := dial(t, ts)

	require.NoError(t, c.conn.WriteMessage(websocket.BinaryMessage, []byte{0xff, 0xff}))
	msg := c.read()
	require.Equal(t, protocol.MsgError, msg.Type)
	p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, apperrors.CodeInvalidMsg, p.Code)
}

func TestServer_FloodDisconnects(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.MaxMessages = 2
	ts := httptest.NewServer(New(cfg, storage.NewMemoryStore()).Handler())
	defer ts.Close()
	c := dial(t, ts)

	for i := range 10 {
		c.send(protocol.MsgPing, protocol.PingPayload{Timestamp: int64(i)})
	}

	var pongs, limited int
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			require.False(t, errors.Is(err, os.ErrDeadlineExceeded), "connection should be closed by the server")
			// 排队的回复全部送达后才收到关闭帧
			assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "unexpected close: %v", err)
			break
		}
		msg, err := codec.Decode(data)
		require.NoError(t, err)
		switch msg.Type {
		case protocol.MsgPong:
			pongs++
		case protocol.MsgError:
			p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
			require.NoError(t, err)
			assert.Equal(t, apperrors.CodeRateLimit, p.Code)
			limited++
		}
	}

	assert.Equal(t, 2, pongs)
	assert.GreaterOrEqual(t, limited, 1+maxDroppedMessages)
}

func TestServer_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"https://reversi.example"}
	ts := httptest.NewServer(New(cfg, storage.NewMemoryStore()).Handler())
	defer ts.Close()

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_ConnectionLimit(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.MaxConnections = 1
	ts := httptest.NewServer(New(cfg, storage.NewMemoryStore()).Handler())
	defer ts.Close()

	dial(t, ts)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
}

func TestServer_RoomSnapshotRoute(t *testing.T) {
	t.Parallel()

	_, store, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/rooms/1111")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	rec := room.NewRecord("host")
	require.NoError(t, store.WriteRoom(context.Background(), "1111", rec))

	resp, err = http.Get(ts.URL + "/rooms/1111")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got room.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, *rec, got)
}

func TestNewServer_RedisBackend(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()

	s, err := NewServer(cfg)
	require.NoError(t, err)
	require.NotNil(t, s.redis)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown(context.Background()))
}

func TestNewServer_RedisUnavailable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()
	mr.Close()

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestServer_ShutdownNotifiesClients(t *testing.T) {
	t.Parallel()

	s, _, ts := newTestServer(t)
	c := dial(t, ts)
	assert.Eventually(t, func() bool { return s.OnlineCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Shutdown(context.Background()))

	msg := c.read()
	require.Equal(t, protocol.MsgError, msg.Type)
	p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, apperrors.CodeShutdown, p.Code)

	// 通知之后是正常关闭帧
	_, _, err = c.conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected close: %v", err)
}
