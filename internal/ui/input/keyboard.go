// Package input handles keyboard input processing.
package input

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/reversi/internal/ui/model"
)

// HandleKeyPress handles keyboard input and returns whether it was handled.
// 未处理的按键交给输入框
func HandleKeyPress(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return true, m.Quit()
	case tea.KeyEsc:
		return handleEscKey(m)
	}

	switch m.Phase() {
	case model.PhaseMenu:
		return handleMenuKey(m, msg)
	case model.PhaseJoinInput:
		if msg.Type == tea.KeyEnter {
			return true, m.JoinRoom(strings.TrimSpace(m.Input().Value()))
		}
		return false, nil
	case model.PhasePlaying:
		return handlePlayingKey(m, msg)
	case model.PhaseGameOver:
		return handleGameOverKey(m, msg)
	}
	return true, nil
}

func handleEscKey(m model.Model) (bool, tea.Cmd) {
	if m.Phase() == model.PhaseMenu {
		return true, m.Quit()
	}
	m.EnterMenu()
	return true, nil
}

func handleMenuKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	menu := m.Menu()
	switch msg.String() {
	case "up", "k":
		menu.Up()
		return true, nil
	case "down", "j":
		menu.Down()
		return true, nil
	case "enter", " ":
		return true, chooseMenuItem(m, menu.Selected())
	}

	if menu.Select(msg.String()) {
		return true, chooseMenuItem(m, menu.Selected())
	}
	return true, nil
}

func chooseMenuItem(m model.Model, item int) tea.Cmd {
	switch item {
	case model.MenuLocal:
		m.StartLocal()
	case model.MenuCreate:
		return m.CreateRoom()
	case model.MenuJoin:
		m.EnterJoinInput()
	case model.MenuQuit:
		return m.Quit()
	}
	return nil
}

func handlePlayingKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	game := m.Game()
	switch msg.String() {
	case "up", "k":
		game.MoveCursor(0, -1)
	case "down", "j":
		game.MoveCursor(0, 1)
	case "left", "h":
		game.MoveCursor(-1, 0)
	case "right", "l":
		game.MoveCursor(1, 0)
	case "enter", " ":
		return true, m.PlaceAtCursor()
	}
	return true, nil
}

func handleGameOverKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.Restart()
	case "enter":
		m.EnterMenu()
	}
	return true, nil
}
