package turn

import "github.com/palemoky/reversi/internal/game/board"

// Coordinator 本地对局（同一设备两人轮流）的回合协调器，非并发安全，
// 由界面的单一更新循环驱动
type Coordinator struct {
	snap Snapshot
}

// NewCoordinator 创建开局状态的协调器
func NewCoordinator() *Coordinator {
	c := &Coordinator{}
	c.Reset()
	return c
}

// Reset 重新开局
func (c *Coordinator) Reset() {
	c.snap = NewSnapshot()
}

// SubmitMove 由 acting 一方在 pos 落子，失败时状态不变
func (c *Coordinator) SubmitMove(pos board.Pos, acting board.Cell) ([]Event, error) {
	next, events, err := Submit(c.snap, pos, acting)
	if err != nil {
		return nil, err
	}
	c.snap = next
	return events, nil
}

// Board 当前棋盘（副本）
func (c *Coordinator) Board() board.Board {
	return c.snap.Board
}

// State 当前回合状态
func (c *Coordinator) State() State {
	return c.snap.State
}

// Snapshot 当前快照
func (c *Coordinator) Snapshot() Snapshot {
	return c.snap
}

// Result 终局结果，未结束时 ok 为 false
func (c *Coordinator) Result() (Result, bool) {
	if c.snap.State != Finished {
		return Result{}, false
	}
	return ResultOf(c.snap.Board), true
}
