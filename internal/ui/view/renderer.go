// Package view provides UI rendering functions.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/reversi/internal/ui/common"
	"github.com/palemoky/reversi/internal/ui/model"
)

// CreateViewRenderer creates a view renderer function that can be injected into AppModel.
func CreateViewRenderer() func(model.Model, model.GamePhase) string {
	return func(m model.Model, phase model.GamePhase) string {
		var content string
		switch phase {
		case model.PhaseMenu:
			content = MenuView(m)
		case model.PhaseJoinInput:
			content = JoinView(m)
		case model.PhaseWaiting:
			content = WaitingView(m)
		case model.PhasePlaying, model.PhaseGameOver:
			content = GameView(m)
		default:
			content = "Unknown phase"
		}
		return withNotification(m, content)
	}
}

// withNotification 在顶部叠加当前系统通知
func withNotification(m model.Model, content string) string {
	n := m.GetCurrentNotification()
	if n == nil {
		return content
	}
	style := common.InfoStyle
	if n.Type == model.NotifyError {
		style = common.ErrorStyle
	}
	banner := lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, style.Render(n.Message))
	return banner + "\n" + content
}

// MenuView 主菜单
func MenuView(m model.Model) string {
	width := m.Width()
	var sb strings.Builder

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("● Reversi ○")))
	sb.WriteString("\n\n")

	var items strings.Builder
	for i, item := range model.MenuItems {
		line := "  " + item.Key + ". " + item.Label
		if i == m.Menu().Selected() {
			line = common.MenuSelectedStyle.Render("▶ " + item.Key + ". " + item.Label)
		}
		items.WriteString(line)
		if i < len(model.MenuItems)-1 {
			items.WriteString("\n")
		}
	}
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.BoxStyle.Render(items.String())))
	sb.WriteString("\n")

	if err := m.Error(); err != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.ErrorStyle.Render(err)))
	}

	hint := common.MutedStyle.Render("↑/↓ select · enter confirm · esc quit")
	sb.WriteString("\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.PromptStyle.Render(hint)))
	return sb.String()
}

// JoinView 输入房间号
func JoinView(m model.Model) string {
	width := m.Width()
	var sb strings.Builder

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("Join online room")))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.BoxStyle.Render(m.Input().View())))
	sb.WriteString("\n")

	if err := m.Error(); err != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.ErrorStyle.Render(err)))
	}

	hint := common.MutedStyle.Render("enter join · esc back")
	sb.WriteString("\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.PromptStyle.Render(hint)))
	return sb.String()
}

// WaitingView 等待对手加入，显示房间号
func WaitingView(m model.Model) string {
	width := m.Width()
	var sb strings.Builder

	title := common.TitleStyle("🏠 Room " + m.RoomID())
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	body := "Share this room code with your opponent:\n\n" +
		lipgloss.PlaceHorizontal(30, lipgloss.Center, common.MenuSelectedStyle.Render(m.RoomID())) +
		"\n\nYou play " + common.Disc(m.Game().MyColor()) + " " + common.ColorName(m.Game().MyColor()) +
		" and move first.\nWaiting for a guest to join..."
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.BoxStyle.Render(body)))
	sb.WriteString("\n")

	hint := common.MutedStyle.Render("esc leave")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.PromptStyle.Render(hint)))
	return sb.String()
}
