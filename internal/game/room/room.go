// Package room 房间记录与联机对局。
//
// 房间记录是双方共享的唯一事实来源：每次落子或强制跳过都以整条记录
// 替换写入，版本号严格递增。只有当前回合持有者可以写入下一版本。
package room

import (
	"context"

	"github.com/google/uuid"

	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/game/turn"
)

// Record 房间记录，JSON 字段与已存房间逐字段兼容
type Record struct {
	Host    string      `json:"host"`
	Guest   string      `json:"guest"`
	Turn    string      `json:"turn"` // 回合持有者身份或 TurnNone
	Board   board.Board `json:"board"`
	Status  Status      `json:"status"`
	Version int64       `json:"version,omitempty"`
}

// Store 房间记录的持久化与推送通道
type Store interface {
	// ReadRoom 读取房间，不存在时返回 (nil, nil)
	ReadRoom(ctx context.Context, id string) (*Record, error)
	// WriteRoom 整条替换写入
	WriteRoom(ctx context.Context, id string, rec *Record) error
	// Subscribe 推送之后的每个版本，ctx 结束时关闭通道
	Subscribe(ctx context.Context, id string) (<-chan *Record, error)
}

// NewIdentity 生成会话身份
func NewIdentity() string {
	return uuid.NewString()
}

// NewRecord 房主创建的等待中房间
func NewRecord(host string) *Record {
	return &Record{
		Host:    host,
		Turn:    TurnNone,
		Board:   board.New(),
		Status:  StatusWaiting,
		Version: 1,
	}
}

// Clone 返回副本，棋盘是数组，整体赋值即深拷贝
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// RoleOf 身份在房间中的座位
func (r *Record) RoleOf(identity string) (Role, bool) {
	switch {
	case identity == "":
		return 0, false
	case identity == r.Host:
		return RoleHost, true
	case identity == r.Guest:
		return RoleGuest, true
	default:
		return 0, false
	}
}

// IdentityOf 持有某颜色的玩家身份
func (r *Record) IdentityOf(color board.Cell) string {
	switch color {
	case board.Dark:
		return r.Host
	case board.Light:
		return r.Guest
	default:
		return TurnNone
	}
}

// TurnColor 当前回合持有者的颜色，无人持有时为 Empty
func (r *Record) TurnColor() board.Cell {
	if r.Turn == TurnNone {
		return board.Empty
	}
	if role, ok := r.RoleOf(r.Turn); ok {
		return role.Color()
	}
	return board.Empty
}

// Snapshot 由记录重建回合快照
func (r *Record) Snapshot() turn.Snapshot {
	s := turn.Snapshot{Board: r.Board, State: turn.DarkToMove}
	switch {
	case r.Status == StatusEnd:
		s.State = turn.Finished
	case r.TurnColor() == board.Light:
		s.State = turn.LightToMove
	}
	return s
}

// Next 以快照生成下一版本记录，棋盘、回合、状态一起替换
func (r *Record) Next(s turn.Snapshot) *Record {
	next := r.Clone()
	next.Board = s.Board
	next.Version = r.Version + 1
	if s.State == turn.Finished {
		next.Turn = TurnNone
		next.Status = StatusEnd
	} else {
		next.Turn = r.IdentityOf(s.State.ToMove())
		next.Status = StatusRunning
	}
	return next
}
