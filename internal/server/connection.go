package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/palemoky/reversi/internal/protocol"
	"github.com/palemoky/reversi/internal/protocol/codec"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	// 连接数限制检查
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Printf("🚫 达到最大连接数限制 (%d), IP: %s", s.maxConnections, ip)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		log.Printf("WebSocket 升级失败 (IP: %s): %v", ip, err)
		return
	}

	// 凭令牌重连时沿用原身份，否则分配新身份
	ticket, resumed := s.sessions.Resume(r.URL.Query().Get("token"))
	if !resumed {
		ticket = s.sessions.Issue()
	}

	client := NewClient(s, conn, ticket.Identity)
	client.IP = ip
	s.registerClient(client)

	// 身份随连接下发，客户端用它填写 host/guest/turn
	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		Identity:       ticket.Identity,
		ReconnectToken: ticket.Token,
		Resumed:        resumed,
	}))

	if resumed {
		log.Printf("🔄 玩家 %s 已重连 (IP: %s)", client.ID, ip)
	} else {
		log.Printf("✅ 玩家 %s 已连接 (IP: %s)", client.ID, ip)
	}

	client.serve()
}

// healthResponse 健康检查响应
type healthResponse struct {
	Status string `json:"status"`
	Online int    `json:"online"`
}

// handleHealth 健康检查接口，Redis 不可用时返回 503
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Online: s.OnlineCount()}
	code := http.StatusOK

	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), redisPingTimeout)
		defer cancel()
		if err := s.redis.Ping(ctx).Err(); err != nil {
			resp.Status = "redis unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, resp)
}

// handleRoomSnapshot 以 JSON 返回房间记录
func (s *Server) handleRoomSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.ReadRoom(r.Context(), id)
	if err != nil {
		log.Printf("读取房间 %s 失败: %v", id, err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("写入响应失败: %v", err)
	}
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端并释放连接名额
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	// 重连后同一身份可能已被新连接占用
	if cur, ok := s.clients[client.ID]; ok && cur == client {
		delete(s.clients, client.ID)
	}
	s.clientsMu.Unlock()

	<-s.semaphore
	log.Printf("❌ 玩家 %s 已断开", client.ID)
}
