// Package common provides shared styles and utilities for the UI.
package common

import "github.com/charmbracelet/lipgloss"

// 棋子与棋盘符号
const (
	DarkDisc  = "●"
	LightDisc = "○"
	EmptyCell = "·"
	HintMark  = "∘"

	ColumnLabels = "abcdefgh"
)

// Lipgloss Styles - shared across local and online modes
var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	InfoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// 棋盘格子
	BoardCellStyle = lipgloss.NewStyle().Background(lipgloss.Color("28")).Padding(0, 1)
	DarkDiscStyle  = BoardCellStyle.Foreground(lipgloss.Color("0")).Bold(true)
	LightDiscStyle = BoardCellStyle.Foreground(lipgloss.Color("15")).Bold(true)
	HintStyle      = BoardCellStyle.Foreground(lipgloss.Color("192"))
	CursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("214")).Padding(0, 1)

	MenuSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
)
