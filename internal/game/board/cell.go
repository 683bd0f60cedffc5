// Package board implements the Reversi board engine: legal-move detection,
// capture computation, board mutation and terminal-state detection.
//
// Every operation is a pure function over a Board value. A Board is an array,
// so assignment copies it and no move can alias a board held by a caller.
package board

import "fmt"

// Size 棋盘边长
const Size = 8

// Cell 格子状态
type Cell uint8

const (
	Empty Cell = iota
	Light
	Dark
)

// 房间记录中使用的格子名称（与已存房间保持一致）
const (
	nameEmpty = "None"
	nameLight = "White"
	nameDark  = "Black"
)

// Opponent 返回对手颜色，Empty 的对手仍是 Empty
func (c Cell) Opponent() Cell {
	switch c {
	case Light:
		return Dark
	case Dark:
		return Light
	default:
		return Empty
	}
}

// String 返回房间记录中的格子名称
func (c Cell) String() string {
	switch c {
	case Light:
		return nameLight
	case Dark:
		return nameDark
	default:
		return nameEmpty
	}
}

// ParseCell 解析房间记录中的格子名称
func ParseCell(s string) (Cell, error) {
	switch s {
	case nameEmpty:
		return Empty, nil
	case nameLight:
		return Light, nil
	case nameDark:
		return Dark, nil
	default:
		return Empty, fmt.Errorf("unknown cell %q", s)
	}
}

// MarshalText 房间记录中以名称保存格子
func (c Cell) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText 解析房间记录中的格子名称
func (c *Cell) UnmarshalText(text []byte) error {
	parsed, err := ParseCell(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Pos 棋盘坐标，X 为列，Y 为行
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds 坐标是否在棋盘内
func (p Pos) InBounds() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction 单位方向向量
type Direction struct {
	DX, DY int
}

// Directions 全部 8 个方向
var Directions = [8]Direction{
	{-1, 0},  // 左
	{-1, -1}, // 左上
	{0, -1},  // 上
	{1, -1},  // 右上
	{1, 0},   // 右
	{1, 1},   // 右下
	{0, 1},   // 下
	{-1, 1},  // 左下
}
