package server

import "github.com/palemoky/reversi/internal/protocol"

// OnlineCount 当前连接数
func (s *Server) OnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// connectedClients 复制一份连接列表，发送时不持有锁
func (s *Server) connectedClients() []*Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	out := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast 向所有连接发送同一条消息，返回发送的连接数
func (s *Server) Broadcast(msg *protocol.Message) int {
	clients := s.connectedClients()
	for _, c := range clients {
		c.SendMessage(msg)
	}
	return len(clients)
}
