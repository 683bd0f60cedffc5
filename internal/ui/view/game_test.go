package view

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/palemoky/reversi/internal/game/board"
	"github.com/palemoky/reversi/internal/ui/common"
	"github.com/palemoky/reversi/internal/ui/model"
)

func TestRenderBoard(t *testing.T) {
	t.Parallel()

	b := board.New()
	hints := make(map[board.Pos]bool)
	for _, p := range b.LegalMoves(board.Dark) {
		hints[p] = true
	}

	tests := []struct {
		name  string
		opts  BoardOptions
		hints int
	}{
		{"plain", BoardOptions{}, 0},
		{"with hints", BoardOptions{Hints: hints}, 4},
		{"with cursor", BoardOptions{Hints: hints, Cursor: &board.Pos{X: 0, Y: 0}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := RenderBoard(b, tt.opts)

			lines := strings.Split(out, "\n")
			assert.Len(t, lines, board.Size+1)
			assert.Contains(t, lines[0], "a")
			assert.Contains(t, lines[0], "h")
			assert.Equal(t, 2, strings.Count(out, common.DarkDisc))
			assert.Equal(t, 2, strings.Count(out, common.LightDisc))
			assert.Equal(t, tt.hints, strings.Count(out, common.HintMark))
		})
	}
}

func newModel(phase func(*model.AppModel)) *model.AppModel {
	m := model.NewAppModel(nil, nil)
	m.SetViewRenderer(CreateViewRenderer())
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if phase != nil {
		phase(m)
	}
	return m
}

func TestMenuView(t *testing.T) {
	t.Parallel()

	out := newModel(nil).View()
	for _, item := range model.MenuItems {
		assert.Contains(t, out, item.Label)
	}
	assert.Contains(t, out, "▶ 1.")
}

func TestGameView_Local(t *testing.T) {
	t.Parallel()

	m := newModel(func(m *model.AppModel) { m.StartLocal() })
	out := m.View()

	assert.Contains(t, out, "Reversi · Local game")
	assert.Contains(t, out, "Black to move")
	assert.Contains(t, out, "Black   2")
	assert.Contains(t, out, "Cursor d4")
	assert.Contains(t, out, "enter/space place")
}

func TestGameView_Notification(t *testing.T) {
	t.Parallel()

	m := newModel(func(m *model.AppModel) { m.StartLocal() })
	m.SetNotification(model.NotifyReconnecting, "🔄 Reconnecting (1/5)...", false)

	assert.Contains(t, m.View(), "Reconnecting (1/5)")
}

func TestView_BeforeResize(t *testing.T) {
	t.Parallel()

	m := model.NewAppModel(nil, nil)
	assert.Equal(t, "Loading...", m.View())
}
