package server

import (
	"context"
	"log"
	"runtime"
	"strconv"
	"time"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/protocol/codec"
	"github.com/palemoky/reversi/internal/server/storage"
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopStats:
			return
		case <-ticker.C:
			s.logStats()
		}
	}
}

func (s *Server) logStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	rooms := "-"
	if ms, ok := s.store.(*storage.MemoryStore); ok {
		rooms = strconv.Itoa(ms.RoomCount())
	}

	log.Printf("📊 [监控] 在线: %d | 订阅: %d | 房间: %s | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
		s.OnlineCount(),
		s.handler.SubscriptionCount(),
		rooms,
		runtime.NumGoroutine(),
		len(s.semaphore),
		s.maxConnections,
		float64(m.Alloc)/1024/1024)
}

// Shutdown 优雅关闭：通知客户端，停止监听，断开连接，关闭 Redis
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stopStats)
		s.sessions.Close()
	})

	notified := s.Broadcast(codec.NewErrorMessageWithText(apperrors.CodeShutdown, "server is shutting down"))
	log.Printf("📢 已通知 %d 个连接", notified)

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// WebSocket 连接已被接管，需要单独关闭
	for _, client := range s.connectedClients() {
		client.Close()
	}

	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	log.Println("服务器已关闭")
	return err
}
