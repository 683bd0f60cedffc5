package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// allowOrigins 生成 websocket.Upgrader 的来源校验函数。
// 列表为空或含 "*" 时放行所有来源；终端客户端不带 Origin，总是放行
func allowOrigins(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}

// clientIP 取请求来源地址。代理头已由 middleware.RealIP 写入 RemoteAddr
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// verdict 单条消息的限流结果
type verdict int

const (
	verdictPass verdict = iota
	verdictWarn         // 放行，但令牌即将耗尽
	verdictDrop
)

// floodGuard 按连接的令牌桶限流，容量与每秒补充量都是 perSecond
type floodGuard struct {
	mu      sync.Mutex
	rate    float64
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens  float64
	last    time.Time
	warned  bool
	strikes int // 被丢弃的消息数
}

func newFloodGuard(perSecond int) *floodGuard {
	return &floodGuard{
		rate:    float64(perSecond),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// take 为 id 消耗一个令牌，返回结果与累计丢弃次数
func (g *floodGuard) take(id string) (verdict, int) {
	if g.rate <= 0 {
		return verdictPass, 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	b, ok := g.buckets[id]
	if !ok {
		b = &bucket{tokens: g.rate, last: now}
		g.buckets[id] = b
	}
	b.tokens = min(g.rate, b.tokens+now.Sub(b.last).Seconds()*g.rate)
	b.last = now

	if b.tokens < 1 {
		b.strikes++
		return verdictDrop, b.strikes
	}
	b.tokens--

	// 剩余不足四分之一时提醒一次，回升后重新计
	if b.tokens < g.rate/4 {
		if !b.warned {
			b.warned = true
			return verdictWarn, b.strikes
		}
	} else {
		b.warned = false
	}
	return verdictPass, b.strikes
}

// forget 连接断开后丢弃其令牌桶
func (g *floodGuard) forget(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.buckets, id)
}
