// Package session 管理连接身份与断线重连令牌
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// 断线后凭令牌找回身份的时限
	resumeWindow = 2 * time.Minute
	// 离线超过该时长的身份被清除
	retention     = 10 * time.Minute
	sweepInterval = time.Minute
)

// Ticket 下发给客户端的身份与重连令牌。身份跨重连不变，房间记录中的座位因此保持有效
type Ticket struct {
	Identity string
	Token    string
}

type entry struct {
	token        string
	online       bool
	offlineSince time.Time
}

// Registry 身份登记表
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry // identity -> entry
	byToken map[string]string // token -> identity

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewRegistry 创建登记表并启动后台清理
func NewRegistry() *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		byToken: make(map[string]string),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Issue 为新连接分配身份
func (r *Registry) Issue() Ticket {
	t := Ticket{Identity: uuid.NewString(), Token: newToken()}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[t.Identity] = &entry{token: t.Token, online: true}
	r.byToken[t.Token] = t.Identity
	return t
}

// Resume 凭令牌找回离线身份。身份仍在线或已超出时限时返回 false
func (r *Registry) Resume(token string) (Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byToken[token]
	if !ok {
		return Ticket{}, false
	}
	e := r.entries[identity]
	if e.online || r.now().Sub(e.offlineSince) > resumeWindow {
		return Ticket{}, false
	}

	e.online = true
	e.offlineSince = time.Time{}
	return Ticket{Identity: identity, Token: e.token}, true
}

// Release 连接断开，身份转为离线并开始计时
func (r *Registry) Release(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[identity]; ok {
		e.online = false
		e.offlineSince = r.now()
	}
}

func (r *Registry) Online(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[identity]
	return ok && e.online
}

// Len 登记的身份数，含离线未清除的
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close 停止后台清理
func (r *Registry) Close() {
	r.once.Do(func() { close(r.stop) })
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-retention)
	for identity, e := range r.entries {
		if !e.online && e.offlineSince.Before(cutoff) {
			delete(r.byToken, e.token)
			delete(r.entries, identity)
		}
	}
}

// newToken 32 字节随机数的十六进制串
func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
