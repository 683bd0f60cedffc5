package room

import (
	"context"
	"fmt"
	"sync"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/game/turn"
)

// Update 一次记录推送的处理结果
type Update struct {
	Record *Record
	Events []turn.Event
	Err    error
}

// Session 联机对局中一方的回合协调器。
// 座位和颜色在创建时确定，之后只保存最近一次收到的记录。
type Session struct {
	store    Store
	roomID   string
	identity string
	role     Role

	mu     sync.Mutex
	latest *Record
}

// NewSession 读取房间并确定座位
func NewSession(ctx context.Context, store Store, roomID, identity string) (*Session, error) {
	rec, err := store.ReadRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("read room %s: %w", roomID, err)
	}
	if rec == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	role, ok := rec.RoleOf(identity)
	if !ok {
		return nil, apperrors.ErrNotInRoom
	}
	return &Session{
		store:    store,
		roomID:   roomID,
		identity: identity,
		role:     role,
		latest:   rec.Clone(),
	}, nil
}

func (s *Session) RoomID() string   { return s.roomID }
func (s *Session) Identity() string { return s.identity }
func (s *Session) Role() Role       { return s.role }

// Color 本方棋子颜色
func (s *Session) Color() board.Cell {
	return s.role.Color()
}

// Record 最近一次收到的记录（副本）
func (s *Session) Record() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.Clone()
}

// Snapshot 由最近记录重建的快照
func (s *Session) Snapshot() turn.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.Snapshot()
}

// IsMyTurn 最近记录中回合持有者是否为本方
func (s *Session) IsMyTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.Status == StatusRunning && s.latest.Turn == s.identity
}

// Submit 落子：先读取最新记录校验身份与状态，再整条写回下一版本
func (s *Session) Submit(ctx context.Context, pos board.Pos) ([]turn.Event, error) {
	rec, err := s.store.ReadRoom(ctx, s.roomID)
	if err != nil {
		return nil, fmt.Errorf("read room %s: %w", s.roomID, err)
	}
	if rec == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	s.adopt(rec)

	switch rec.Status {
	case StatusEnd:
		return nil, apperrors.ErrGameFinished
	case StatusWaiting:
		return nil, apperrors.ErrNotYourTurn
	}
	if rec.Turn != s.identity {
		return nil, apperrors.ErrNotYourTurn
	}

	snap, events, err := turn.Submit(rec.Snapshot(), pos, s.Color())
	if err != nil {
		return nil, err
	}

	if err := s.write(ctx, rec, rec.Next(snap)); err != nil {
		return nil, err
	}
	return events, nil
}

// Observe 处理一次推送的记录。版本低于已知版本的记录被丢弃；
// 本方持有回合却无处可下时，由本方写入强制跳过。
func (s *Session) Observe(ctx context.Context, rec *Record) ([]turn.Event, error) {
	if rec == nil {
		return nil, nil
	}

	s.mu.Lock()
	prev := s.latest
	if prev != nil && rec.Version < prev.Version {
		s.mu.Unlock()
		return nil, nil
	}
	s.latest = rec.Clone()
	s.mu.Unlock()

	events := diffEvents(prev, rec)

	if rec.Status != StatusRunning || rec.Turn != s.identity {
		return events, nil
	}
	advanced, forced := turn.Advance(rec.Snapshot())
	if len(forced) == 0 {
		return events, nil
	}
	if err := s.write(ctx, rec, rec.Next(advanced)); err != nil {
		return events, err
	}
	return append(events, forced...), nil
}

// Watch 订阅房间，每次推送经 Observe 处理后发出。ctx 结束时通道关闭
func (s *Session) Watch(ctx context.Context) (<-chan Update, error) {
	records, err := s.store.Subscribe(ctx, s.roomID)
	if err != nil {
		return nil, fmt.Errorf("subscribe room %s: %w", s.roomID, err)
	}

	// 订阅建立前可能已有新版本，先补读一次
	current, err := s.store.ReadRoom(ctx, s.roomID)
	if err != nil {
		return nil, fmt.Errorf("read room %s: %w", s.roomID, err)
	}

	out := make(chan Update, 16)
	go func() {
		defer close(out)

		emit := func(rec *Record) bool {
			events, err := s.Observe(ctx, rec)
			select {
			case out <- Update{Record: s.Record(), Events: events, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if current != nil && !emit(current) {
			return
		}
		for rec := range records {
			if !emit(rec) {
				return
			}
		}
	}()
	return out, nil
}

func (s *Session) adopt(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil || rec.Version >= s.latest.Version {
		s.latest = rec.Clone()
	}
}

// write 先在本地采用新版本再写入，推送回来的同版本记录不会重复产生事件
func (s *Session) write(ctx context.Context, prev, next *Record) error {
	s.adopt(next)
	if err := s.store.WriteRoom(ctx, s.roomID, next); err != nil {
		s.mu.Lock()
		if s.latest.Version == next.Version {
			s.latest = prev.Clone()
		}
		s.mu.Unlock()
		return fmt.Errorf("write room %s: %w", s.roomID, err)
	}
	return nil
}

// diffEvents 比较前后两个版本：回合持有者未变而棋盘变化说明对手被跳过
func diffEvents(prev, rec *Record) []turn.Event {
	if rec.Status == StatusEnd {
		if prev == nil || prev.Status != StatusEnd {
			return []turn.Event{turn.GameOver{Result: turn.ResultOf(rec.Board)}}
		}
		return nil
	}
	if prev == nil || prev.Status != StatusRunning || rec.Status != StatusRunning {
		return nil
	}
	if prev.Board != rec.Board && prev.Turn == rec.Turn {
		return []turn.Event{turn.Pass{Color: rec.TurnColor().Opponent()}}
	}
	return nil
}
