// Package common provides shared utilities for the UI.
package common

import (
	"fmt"

	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/game/turn"
)

// TruncateName 超过 maxLen 个字符时截断，末尾补省略号
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// ColorName 颜色在界面上的名称
func ColorName(c board.Cell) string {
	switch c {
	case board.Dark:
		return "Black"
	case board.Light:
		return "White"
	default:
		return "Nobody"
	}
}

// Disc 颜色对应的棋子符号
func Disc(c board.Cell) string {
	switch c {
	case board.Dark:
		return DarkDisc
	case board.Light:
		return LightDisc
	default:
		return EmptyCell
	}
}

// TurnText 回合提示。mine 为本方颜色，本地对局传 Empty
func TurnText(s turn.Snapshot, mine board.Cell) string {
	if s.State == turn.Finished {
		return ResultText(turn.ResultOf(s.Board))
	}
	toMove := s.State.ToMove()
	switch {
	case mine == board.Empty:
		return fmt.Sprintf("%s %s to move", Disc(toMove), ColorName(toMove))
	case mine == toMove:
		return fmt.Sprintf("%s Your turn (%s)", Disc(toMove), ColorName(toMove))
	default:
		return fmt.Sprintf("%s Waiting for %s", Disc(toMove), ColorName(toMove))
	}
}

// PassText 强制跳过提示
func PassText(c board.Cell) string {
	return fmt.Sprintf("%s has no legal move and passes", ColorName(c))
}

// ResultText 终局比分与胜负
func ResultText(r turn.Result) string {
	score := fmt.Sprintf("Black = %d, White = %d", r.Score.Dark, r.Score.Light)
	switch r.Outcome {
	case turn.DarkWins:
		return score + ": Black wins"
	case turn.LightWins:
		return score + ": White wins"
	default:
		return score + ": Draw"
	}
}

// EventText 把回合事件转换为状态栏文本
func EventText(e turn.Event) string {
	switch ev := e.(type) {
	case turn.Pass:
		return PassText(ev.Color)
	case turn.GameOver:
		return ResultText(ev.Result)
	default:
		return ""
	}
}

// PosLabel 坐标的棋谱写法，如 d3
func PosLabel(p board.Pos) string {
	if !p.InBounds() {
		return "--"
	}
	return fmt.Sprintf("%c%d", ColumnLabels[p.X], p.Y+1)
}
