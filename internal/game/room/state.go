package room

import "github.com/palemoky/reversi/internal/game/board"

// Status 房间状态
type Status string

const (
	StatusWaiting Status = "waiting" // 等待对手加入
	StatusRunning Status = "running" // 对局中
	StatusEnd     Status = "end"     // 已结束
)

// TurnNone 无人持有回合（等待中或已结束）
const TurnNone = "none"

// Role 玩家在房间中的座位
type Role int

const (
	RoleHost Role = iota + 1
	RoleGuest
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleGuest:
		return "guest"
	default:
		return "unknown"
	}
}

// Color 座位对应的棋子颜色：房主执黑先行，客人执白
func (r Role) Color() board.Cell {
	switch r {
	case RoleHost:
		return board.Dark
	case RoleGuest:
		return board.Light
	default:
		return board.Empty
	}
}
