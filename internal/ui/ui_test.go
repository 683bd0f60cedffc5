package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/ui/model"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *model.AppModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

// isQuit 命令（可能被合并为批量命令）中是否包含退出
func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range msg {
			if isQuit(c) {
				return true
			}
		}
	}
	return false
}

func newTestModel() *model.AppModel {
	m := NewModel(nil, nil)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestLocalGameWithKeyboard(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	assert.Contains(t, m.View(), "Local game")

	press(m, "1")
	require.Equal(t, model.PhasePlaying, m.Phase())
	assert.Equal(t, model.ModeLocal, m.Mode())

	// 光标从 d4 上移到 d3 落子
	press(m, "k", "enter")
	assert.Equal(t, board.Dark, m.Game().Snapshot().Board.At(board.Pos{X: 3, Y: 2}))

	view := m.View()
	assert.Contains(t, view, "Black played d3")
	assert.Contains(t, view, "White to move")

	// 白方在 c3 落子，使用空格键
	press(m, "h", " ")
	assert.Equal(t, board.Light, m.Game().Snapshot().Board.At(board.Pos{X: 2, Y: 2}))
	assert.Contains(t, m.View(), "White played c3")
}

func TestIllegalMoveKeepsTurn(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	press(m, "1", "enter")

	assert.Equal(t, board.New(), m.Game().Snapshot().Board)
	assert.Contains(t, m.View(), "you cannot place a disk there")
	assert.Contains(t, m.View(), "Black to move")
}

func TestMenuNavigation(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	press(m, "down", "down", "enter")

	// 没有服务器时不能联机
	assert.Equal(t, model.PhaseMenu, m.Phase())
	assert.Contains(t, m.View(), "no server configured")

	press(m, "up", "up", " ")
	assert.Equal(t, model.PhasePlaying, m.Phase())

	press(m, "esc")
	assert.Equal(t, model.PhaseMenu, m.Phase())

	assert.True(t, isQuit(press(m, "esc")))
}

func TestQuitFromMenu(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
}
