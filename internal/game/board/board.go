package board

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	// ErrOutOfRange 坐标超出棋盘，属于调用方缺陷
	ErrOutOfRange = errors.New("position out of board range")
	// ErrNoCapture 落子位置不合法（已有棋子或无子可翻）
	ErrNoCapture = errors.New("move captures nothing")
)

// Board 8x8 棋盘，按行存储，board[y][x]
type Board [Size][Size]Cell

// Score 双方棋子数
type Score struct {
	Dark  int `json:"dark"`
	Light int `json:"light"`
}

// New 返回标准开局棋盘
func New() Board {
	var b Board
	b[3][3] = Light
	b[4][4] = Light
	b[3][4] = Dark
	b[4][3] = Dark
	return b
}

// At 返回坐标上的格子，调用方保证坐标合法
func (b Board) At(p Pos) Cell {
	return b[p.Y][p.X]
}

// LineFrom 从 origin 沿 dir 方向产生坐标序列，不含 origin，到棋盘边缘为止
func LineFrom(origin Pos, dir Direction) iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		p := Pos{X: origin.X + dir.DX, Y: origin.Y + dir.DY}
		for p.InBounds() {
			if !yield(p) {
				return
			}
			p = Pos{X: p.X + dir.DX, Y: p.Y + dir.DY}
		}
	}
}

// CaptureSet 计算 mover 在 origin 落子后会翻转的对手棋子
func (b Board) CaptureSet(origin Pos, mover Cell) ([]Pos, error) {
	if !origin.InBounds() {
		return nil, fmt.Errorf("capture set at %v: %w", origin, ErrOutOfRange)
	}

	var captured []Pos
	for _, dir := range Directions {
		var run []Pos
		for p := range LineFrom(origin, dir) {
			c := b.At(p)
			if c == Empty {
				break
			}
			if c == mover {
				// 被自己的棋子封口，这条线上连续的对手棋子全部翻转
				captured = append(captured, run...)
				break
			}
			run = append(run, p)
		}
	}
	return captured, nil
}

// IsLegalMove 空格且至少翻转一枚棋子
func (b Board) IsLegalMove(origin Pos, mover Cell) (bool, error) {
	captured, err := b.CaptureSet(origin, mover)
	if err != nil {
		return false, err
	}
	return b.At(origin) == Empty && len(captured) > 0, nil
}

// LegalMoves 返回 color 全部合法落子位置
func (b Board) LegalMoves(color Cell) []Pos {
	var moves []Pos
	for y := range Size {
		for x := range Size {
			p := Pos{X: x, Y: y}
			if ok, _ := b.IsLegalMove(p, color); ok {
				moves = append(moves, p)
			}
		}
	}
	return moves
}

// HasAnyLegalMove color 是否还有可下的位置
func (b Board) HasAnyLegalMove(color Cell) bool {
	for y := range Size {
		for x := range Size {
			if ok, _ := b.IsLegalMove(Pos{X: x, Y: y}, color); ok {
				return true
			}
		}
	}
	return false
}

// MustPass color 无处可下，必须跳过
func (b Board) MustPass(color Cell) bool {
	return !b.HasAnyLegalMove(color)
}

// ApplyMove 落子并翻转，返回新棋盘，原棋盘不变
func (b Board) ApplyMove(origin Pos, mover Cell) (Board, error) {
	captured, err := b.CaptureSet(origin, mover)
	if err != nil {
		return b, err
	}
	if b.At(origin) != Empty || len(captured) == 0 {
		return b, fmt.Errorf("apply move at %v: %w", origin, ErrNoCapture)
	}

	next := b
	next[origin.Y][origin.X] = mover
	for _, p := range captured {
		next[p.Y][p.X] = mover
	}
	return next, nil
}

// IsTerminal 双方都无处可下时对局结束（满盘只是其中一种情况）
func (b Board) IsTerminal() bool {
	return b.MustPass(Dark) && b.MustPass(Light)
}

// Tally 统计双方棋子数
func (b Board) Tally() Score {
	var s Score
	for y := range Size {
		for x := range Size {
			switch b[y][x] {
			case Dark:
				s.Dark++
			case Light:
				s.Light++
			}
		}
	}
	return s
}

// String 紧凑文本形式：'.' 空，'D' 黑，'L' 白，每行一行
func (b Board) String() string {
	var sb strings.Builder
	for y := range Size {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range Size {
			switch b[y][x] {
			case Dark:
				sb.WriteByte('D')
			case Light:
				sb.WriteByte('L')
			default:
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}

// Parse 解析 String 产生的文本形式，主要用于测试夹具
func Parse(rows ...string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("board needs %d rows, got %d", Size, len(rows))
	}
	for y, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("row %d needs %d cells, got %d", y, Size, len(row))
		}
		for x := range Size {
			switch row[x] {
			case '.':
				b[y][x] = Empty
			case 'D':
				b[y][x] = Dark
			case 'L':
				b[y][x] = Light
			default:
				return b, fmt.Errorf("row %d col %d: unknown cell %q", y, x, row[x])
			}
		}
	}
	return b, nil
}

// MustParse 同 Parse，失败时 panic
func MustParse(rows ...string) Board {
	b, err := Parse(rows...)
	if err != nil {
		panic(err)
	}
	return b
}
