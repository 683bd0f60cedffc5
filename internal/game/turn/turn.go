// Package turn 回合状态机：轮到谁、强制跳过、终局判定
package turn

import (
	"errors"
	"fmt"

	"github.com/palemoky/reversi/internal/apperrors"
	"github.com/palemoky/reversi/internal/game/board"
)

// State 回合状态
type State int

const (
	DarkToMove State = iota
	LightToMove
	Finished
)

func (s State) String() string {
	switch s {
	case DarkToMove:
		return "dark_to_move"
	case LightToMove:
		return "light_to_move"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ToMove 轮到落子的颜色，Finished 返回 Empty
func (s State) ToMove() board.Cell {
	switch s {
	case DarkToMove:
		return board.Dark
	case LightToMove:
		return board.Light
	default:
		return board.Empty
	}
}

// StateFor 颜色对应的待落子状态
func StateFor(color board.Cell) State {
	if color == board.Light {
		return LightToMove
	}
	return DarkToMove
}

func (s State) flip() State {
	switch s {
	case DarkToMove:
		return LightToMove
	case LightToMove:
		return DarkToMove
	default:
		return s
	}
}

// Outcome 终局结果分类
type Outcome int

const (
	Draw Outcome = iota
	DarkWins
	LightWins
)

func (o Outcome) String() string {
	switch o {
	case DarkWins:
		return "dark_wins"
	case LightWins:
		return "light_wins"
	default:
		return "draw"
	}
}

// Result 终局比分与结果
type Result struct {
	Score   board.Score
	Outcome Outcome
}

// ResultOf 按棋子数判定胜负
func ResultOf(b board.Board) Result {
	score := b.Tally()
	r := Result{Score: score, Outcome: Draw}
	switch {
	case score.Light > score.Dark:
		r.Outcome = LightWins
	case score.Dark > score.Light:
		r.Outcome = DarkWins
	}
	return r
}

// Event 状态推进过程中产生的事件，供界面提示
type Event interface {
	isEvent()
}

// Pass 某一方无处可下被跳过
type Pass struct {
	Color board.Cell
}

// GameOver 对局结束
type GameOver struct {
	Result Result
}

func (Pass) isEvent()     {}
func (GameOver) isEvent() {}

// Snapshot 棋盘与回合状态，值类型
type Snapshot struct {
	Board board.Board
	State State
}

// NewSnapshot 开局快照，黑方先行
func NewSnapshot() Snapshot {
	return Snapshot{Board: board.New(), State: DarkToMove}
}

// Advance 推进状态：终局则结束，待落子方无处可下则跳过，否则不变
func Advance(s Snapshot) (Snapshot, []Event) {
	var events []Event
	for s.State != Finished {
		if s.Board.IsTerminal() {
			s.State = Finished
			events = append(events, GameOver{Result: ResultOf(s.Board)})
			break
		}
		color := s.State.ToMove()
		if s.Board.HasAnyLegalMove(color) {
			break
		}
		// 非终局时对手一定有子可下，翻转一次后下一轮循环即退出
		events = append(events, Pass{Color: color})
		s.State = s.State.flip()
	}
	return s, events
}

// Submit 校验并执行一步落子。被拒绝时返回原快照，不产生任何变化
func Submit(s Snapshot, pos board.Pos, acting board.Cell) (Snapshot, []Event, error) {
	if s.State == Finished {
		return s, nil, apperrors.ErrGameFinished
	}
	if acting != s.State.ToMove() {
		return s, nil, apperrors.ErrNotYourTurn
	}

	next, err := s.Board.ApplyMove(pos, acting)
	if err != nil {
		if errors.Is(err, board.ErrNoCapture) {
			return s, nil, apperrors.ErrIllegalMove
		}
		return s, nil, err
	}

	out, events := Advance(Snapshot{Board: next, State: s.State.flip()})
	return out, events, nil
}
