package model

import (
	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/game/turn"
	"github.com/palemoky/reversi/internal/sound"
	"github.com/palemoky/reversi/internal/ui/common"
)

// GameModel 棋盘界面状态：当前快照、光标与状态栏
type GameModel struct {
	snapshot turn.Snapshot
	mine     board.Cell // 本方颜色，本地对局为 Empty
	cursor   board.Pos
	lastMove *board.Pos
	status   string
}

// NewGameModel 开局状态
func NewGameModel() *GameModel {
	g := &GameModel{}
	g.Reset(turn.NewSnapshot(), board.Empty)
	return g
}

// Reset 以新快照重新开始，光标回到中央
func (g *GameModel) Reset(s turn.Snapshot, mine board.Cell) {
	g.snapshot = s
	g.mine = mine
	g.cursor = board.Pos{X: 3, Y: 3}
	g.lastMove = nil
	g.status = ""
}

func (g *GameModel) Snapshot() turn.Snapshot { return g.snapshot }
func (g *GameModel) MyColor() board.Cell     { return g.mine }
func (g *GameModel) Cursor() board.Pos       { return g.cursor }
func (g *GameModel) LastMove() *board.Pos    { return g.lastMove }
func (g *GameModel) Status() string          { return g.status }
func (g *GameModel) SetStatus(s string)      { g.status = s }

// SetSnapshot 采用新快照，棋盘变化时记录新落子位置
func (g *GameModel) SetSnapshot(s turn.Snapshot) {
	if p, ok := placedAt(g.snapshot.Board, s.Board); ok {
		g.lastMove = &p
	}
	g.snapshot = s
}

// MoveCursor 移动光标，不越过棋盘边缘
func (g *GameModel) MoveCursor(dx, dy int) {
	next := board.Pos{X: g.cursor.X + dx, Y: g.cursor.Y + dy}
	if next.InBounds() {
		g.cursor = next
	}
}

// IsFinished 对局是否结束
func (g *GameModel) IsFinished() bool {
	return g.snapshot.State == turn.Finished
}

// CanAct 本方是否可以落子。本地对局双方共用终端，始终可以
func (g *GameModel) CanAct() bool {
	if g.IsFinished() {
		return false
	}
	return g.mine == board.Empty || g.mine == g.snapshot.State.ToMove()
}

// Hints 当前可落子位置，非本方回合时为空
func (g *GameModel) Hints() map[board.Pos]bool {
	hints := make(map[board.Pos]bool)
	if !g.CanAct() {
		return hints
	}
	for _, p := range g.snapshot.Board.LegalMoves(g.snapshot.State.ToMove()) {
		hints[p] = true
	}
	return hints
}

// TurnText 回合提示
func (g *GameModel) TurnText() string {
	return common.TurnText(g.snapshot, g.mine)
}

// ApplyEvents 把事件文本写入状态栏，返回需要播放的音效
func (g *GameModel) ApplyEvents(events []turn.Event) []string {
	var sounds []string
	for _, e := range events {
		g.status = common.EventText(e)
		switch e.(type) {
		case turn.Pass:
			sounds = append(sounds, sound.Pass)
		case turn.GameOver:
			sounds = append(sounds, sound.GameOver)
		}
	}
	return sounds
}

// placedAt 找出新棋盘上由空变为有子的格子
func placedAt(prev, next board.Board) (board.Pos, bool) {
	for y := range board.Size {
		for x := range board.Size {
			p := board.Pos{X: x, Y: y}
			if prev.At(p) == board.Empty && next.At(p) != board.Empty {
				return p, true
			}
		}
	}
	return board.Pos{}, false
}
