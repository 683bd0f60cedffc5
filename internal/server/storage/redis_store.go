package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/room"
)

const (
	// Redis key 前缀
	roomKeyPrefix   = "room:"
	memberKeyPrefix = "user:"
	updatesSuffix   = ":updates"

	// 默认房间过期时间
	defaultRoomExpiration = 2 * time.Hour
	// 已结束的房间只保留到双方看完结果
	finishedRoomExpiration = 10 * time.Minute

	// 乐观锁冲突时的重试次数
	maxWriteRetries = 3
)

// RedisStore Redis 存储，房间记录以 JSON 保存，每次写入同时发布到更新频道
type RedisStore struct {
	client     *redis.Client
	expiration time.Duration
}

// NewRedisStore 创建 Redis 存储，expiration 为 0 时使用默认过期时间
func NewRedisStore(client *redis.Client, expiration time.Duration) *RedisStore {
	if expiration <= 0 {
		expiration = defaultRoomExpiration
	}
	return &RedisStore{client: client, expiration: expiration}
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

func updatesChannel(id string) string {
	return roomKeyPrefix + id + updatesSuffix
}

// Ping 检查连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// --- 房间存储 ---

// ReadRoom 读取房间，不存在时返回 (nil, nil)
func (rs *RedisStore) ReadRoom(ctx context.Context, id string) (*room.Record, error) {
	return readRoom(ctx, rs.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readRoom(ctx context.Context, c getter, id string) (*room.Record, error) {
	data, err := c.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 房间不存在
		}
		return nil, err
	}

	var rec room.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return &rec, nil
}

// WriteRoom 整条替换写入并发布，版本号不大于当前版本时返回 ErrStaleWrite
func (rs *RedisStore) WriteRoom(ctx context.Context, id string, rec *room.Record) error {
	if rec == nil {
		return nil
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	key := roomKey(id)
	txf := func(tx *redis.Tx) error {
		cur, err := readRoom(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := CheckVersion(cur, rec); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, rs.ttlFor(rec))
			pipe.Publish(ctx, updatesChannel(id), payload)
			return nil
		})
		return err
	}

	for range maxWriteRetries {
		err = rs.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return apperrors.ErrStaleWrite
}

// Subscribe 订阅房间更新频道，ctx 结束时取消订阅并关闭通道
func (rs *RedisStore) Subscribe(ctx context.Context, id string) (<-chan *room.Record, error) {
	pubsub := rs.client.Subscribe(ctx, updatesChannel(id))
	// 等待订阅确认，之后的发布不会丢失
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("订阅房间 %s 失败: %w", id, err)
	}

	out := make(chan *room.Record, 16)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var rec room.Record
				if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
					log.Printf("⚠️ 房间 %s 更新无法解析: %v", id, err)
					continue
				}
				select {
				case out <- &rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (rs *RedisStore) ttlFor(rec *room.Record) time.Duration {
	if rec.Status == room.StatusEnd {
		return min(rs.expiration, finishedRoomExpiration)
	}
	return rs.expiration
}

// --- 玩家所在房间 ---

// MemberData 玩家与房间的对应关系
type MemberData struct {
	Identity  string `json:"identity"`
	RoomID    string `json:"room_id"`
	UpdatedAt int64  `json:"updated_at"`
}

// SaveMember 记录玩家所在房间
func (rs *RedisStore) SaveMember(ctx context.Context, m *MemberData) error {
	data := map[string]any{
		"identity":   m.Identity,
		"room_id":    m.RoomID,
		"updated_at": m.UpdatedAt,
	}
	key := memberKeyPrefix + m.Identity
	if err := rs.client.HSet(ctx, key, data).Err(); err != nil {
		return err
	}
	return rs.client.Expire(ctx, key, rs.expiration).Err()
}

// LoadMember 读取玩家所在房间，不存在时返回 (nil, nil)
func (rs *RedisStore) LoadMember(ctx context.Context, identity string) (*MemberData, error) {
	data, err := rs.client.HGetAll(ctx, memberKeyPrefix+identity).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	updatedAt, _ := strconv.ParseInt(data["updated_at"], 10, 64)
	return &MemberData{
		Identity:  data["identity"],
		RoomID:    data["room_id"],
		UpdatedAt: updatedAt,
	}, nil
}
