package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/reversi/internal/config"
	"github.com/palemoky/reversi/internal/server/handler"
	"github.com/palemoky/reversi/internal/server/session"
	"github.com/palemoky/reversi/internal/server/storage"
)

// Redis 连接检查超时
const redisPingTimeout = 5 * time.Second

// Server WebSocket 服务器，转发房间记录的读写与订阅
type Server struct {
	config    *config.Config
	redis     *redis.Client // memory 后端时为 nil
	store     storage.Backend
	handler   *handler.Handler
	sessions  *session.Registry
	router    chi.Router
	upgrader  websocket.Upgrader
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 按连接限流
	flood *floodGuard

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	httpServer *http.Server
	stopStats  chan struct{}
	stopOnce   sync.Once
}

// NewServer 按配置创建存储后端和服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg.Store.Backend == config.BackendMemory {
		log.Println("💾 使用内存存储，房间记录不会持久化")
		return New(cfg, storage.NewMemoryStore()), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := storage.NewRedisStore(rdb, cfg.Game.RoomTTLDuration())

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}
	log.Printf("💾 已连接 Redis %s", cfg.Redis.Addr)

	s := New(cfg, store)
	s.redis = rdb
	return s, nil
}

// New 使用给定存储创建服务器
func New(cfg *config.Config, store storage.Backend) *Server {
	s := &Server{
		config:         cfg,
		store:          store,
		clients:        make(map[string]*Client),
		sessions:       session.NewRegistry(),
		flood:          newFloodGuard(cfg.Server.MaxMessages),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		stopStats:      make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     allowOrigins(cfg.Server.AllowedOrigins),
	}

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Presence: s,
		Store:    store,
	})
	s.router = s.routes()

	log.Printf("🔒 安全配置: 消息限制=%d/s, 最大连接数=%d", cfg.Server.MaxMessages, cfg.Server.MaxConnections)
	return s
}

// routes 注册 HTTP 路由
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/rooms/{id}", s.handleRoomSnapshot)
	return r
}

// Handler 返回 HTTP 处理器，测试中配合 httptest 使用
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 启动服务器，Shutdown 后返回 nil
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}

	go s.monitorStats(s.config.Server.StatsIntervalDuration())

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
