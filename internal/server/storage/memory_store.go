package storage

import (
	"context"
	"sync"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/room"
)

// subscriberBuffer 单个订阅者的缓冲区大小
const subscriberBuffer = 64

// CheckVersion 新记录的版本号必须大于当前版本。
// 没有版本号的旧记录（版本为 0）不做检查
func CheckVersion(cur, next *room.Record) error {
	if cur == nil || cur.Version == 0 {
		return nil
	}
	if next.Version <= cur.Version {
		return apperrors.ErrStaleWrite
	}
	return nil
}

// Backend 服务端使用的存储：房间记录加玩家所在房间
type Backend interface {
	room.Store
	SaveMember(ctx context.Context, m *MemberData) error
	LoadMember(ctx context.Context, identity string) (*MemberData, error)
}

var (
	_ Backend = (*MemoryStore)(nil)
	_ Backend = (*RedisStore)(nil)
)

// MemoryStore 进程内存储，未启用 Redis 时和测试中使用
type MemoryStore struct {
	mu      sync.RWMutex
	rooms   map[string]*room.Record
	subs    map[string]map[int]chan *room.Record
	members map[string]MemberData
	nextID  int
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:   make(map[string]*room.Record),
		subs:    make(map[string]map[int]chan *room.Record),
		members: make(map[string]MemberData),
	}
}

// ReadRoom 读取房间，不存在时返回 (nil, nil)
func (ms *MemoryStore) ReadRoom(_ context.Context, id string) (*room.Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.rooms[id].Clone(), nil
}

// WriteRoom 整条替换写入并推送给订阅者
func (ms *MemoryStore) WriteRoom(_ context.Context, id string, rec *room.Record) error {
	if rec == nil {
		return nil
	}

	ms.mu.Lock()
	if err := CheckVersion(ms.rooms[id], rec); err != nil {
		ms.mu.Unlock()
		return err
	}
	ms.rooms[id] = rec.Clone()
	// 持锁推送，保证订阅者看到的版本单调递增
	for _, ch := range ms.subs[id] {
		offerLatest(ch, rec.Clone())
	}
	ms.mu.Unlock()
	return nil
}

// offerLatest 非阻塞推送。缓冲区满时丢弃最旧的一条，订阅者最终总能拿到最新记录
func offerLatest(ch chan *room.Record, rec *room.Record) {
	for {
		select {
		case ch <- rec:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribe 订阅房间更新，ctx 结束时关闭通道
func (ms *MemoryStore) Subscribe(ctx context.Context, id string) (<-chan *room.Record, error) {
	in := make(chan *room.Record, subscriberBuffer)

	ms.mu.Lock()
	subID := ms.nextID
	ms.nextID++
	if ms.subs[id] == nil {
		ms.subs[id] = make(map[int]chan *room.Record)
	}
	ms.subs[id][subID] = in
	ms.mu.Unlock()

	// in 只由写入方发送且从不关闭，对外的 out 由本协程关闭
	out := make(chan *room.Record)
	go func() {
		defer close(out)
		defer ms.unsubscribe(id, subID)

		for {
			select {
			case <-ctx.Done():
				return
			case rec := <-in:
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (ms *MemoryStore) unsubscribe(id string, subID int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.subs[id], subID)
	if len(ms.subs[id]) == 0 {
		delete(ms.subs, id)
	}
}

// SubscriberCount 房间当前订阅者数量
func (ms *MemoryStore) SubscriberCount(id string) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.subs[id])
}

// RoomCount 房间总数
func (ms *MemoryStore) RoomCount() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.rooms)
}

// SaveMember 记录玩家所在房间
func (ms *MemoryStore) SaveMember(_ context.Context, m *MemberData) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.members[m.Identity] = *m
	return nil
}

// LoadMember 读取玩家所在房间，不存在时返回 (nil, nil)
func (ms *MemoryStore) LoadMember(_ context.Context, identity string) (*MemberData, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	m, ok := ms.members[identity]
	if !ok {
		return nil, nil
	}
	return &m, nil
}
