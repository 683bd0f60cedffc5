package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/ui/common"
	"github.com/palemoky/reversi/internal/ui/model"
)

// BoardOptions 棋盘渲染选项
type BoardOptions struct {
	Cursor   *board.Pos
	Hints    map[board.Pos]bool
	LastMove *board.Pos
}

// RenderBoard 渲染带坐标的棋盘，高亮光标与可落子位置
func RenderBoard(b board.Board, opts BoardOptions) string {
	var sb strings.Builder

	sb.WriteString("  ")
	for x := range board.Size {
		sb.WriteString(fmt.Sprintf(" %c ", common.ColumnLabels[x]))
	}
	sb.WriteString("\n")

	for y := range board.Size {
		sb.WriteString(fmt.Sprintf("%d ", y+1))
		for x := range board.Size {
			sb.WriteString(renderCell(b, board.Pos{X: x, Y: y}, opts))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func renderCell(b board.Board, p board.Pos, opts BoardOptions) string {
	c := b.At(p)
	symbol := common.Disc(c)

	var style lipgloss.Style
	switch {
	case c == board.Dark:
		style = common.DarkDiscStyle
	case c == board.Light:
		style = common.LightDiscStyle
	case opts.Hints[p]:
		symbol = common.HintMark
		style = common.HintStyle
	default:
		style = common.BoardCellStyle
	}

	if opts.Cursor != nil && *opts.Cursor == p {
		style = style.Background(common.CursorStyle.GetBackground())
	}
	if opts.LastMove != nil && *opts.LastMove == p {
		style = style.Underline(true)
	}
	return style.Render(symbol)
}

// GameView renders the board, score and status line.
func GameView(m model.Model) string {
	width := m.Width()
	game := m.Game()
	snap := game.Snapshot()

	var sb strings.Builder

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle(gameTitle(m))))
	sb.WriteString("\n\n")

	cursor := game.Cursor()
	opts := BoardOptions{Hints: game.Hints(), LastMove: game.LastMove()}
	if !game.IsFinished() {
		opts.Cursor = &cursor
	}
	boardView := RenderBoard(snap.Board, opts)
	side := renderSidePanel(m)
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinHorizontal(lipgloss.Top, common.BoxStyle.Render(boardView), "  ", side)))
	sb.WriteString("\n")

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.PromptStyle.Render(game.TurnText())))
	sb.WriteString("\n")
	if status := game.Status(); status != "" {
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.InfoStyle.Render(status)))
		sb.WriteString("\n")
	}

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.MutedStyle.Render(keyHint(m))))
	return sb.String()
}

func gameTitle(m model.Model) string {
	if m.Mode() == model.ModeOnline {
		return "Reversi · Room " + m.RoomID()
	}
	return "Reversi · Local game"
}

// renderSidePanel 比分与座位信息
func renderSidePanel(m model.Model) string {
	game := m.Game()
	score := game.Snapshot().Board.Tally()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s Black  %2d\n", common.DarkDisc, score.Dark))
	sb.WriteString(fmt.Sprintf("%s White  %2d\n", common.LightDisc, score.Light))
	sb.WriteString("\n")
	sb.WriteString("Cursor " + common.PosLabel(game.Cursor()))

	if m.Mode() == model.ModeOnline {
		mine := game.MyColor()
		sb.WriteString("\n\nYou: " + common.Disc(mine) + " " + common.ColorName(mine))
		if id := m.PlayerID(); id != "" {
			sb.WriteString("\nID: " + common.TruncateName(id, 9))
		}
	}
	return common.BoxStyle.Render(sb.String())
}

func keyHint(m model.Model) string {
	if m.Phase() == model.PhaseGameOver {
		if m.Mode() == model.ModeLocal {
			return "r play again · esc menu"
		}
		return "enter menu · esc menu"
	}
	return "←↑↓→/hjkl move · enter/space place · esc menu"
}
