// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/tetris-battle/internal/game/board"
)

// Cell glyphs, two columns per board cell on the main board
const (
	BlockCell = "██"
	GhostCell = "░░"
	EmptyCell = " ·"

	MiniBlock = "█"
	MiniEmpty = "·"

	WinnerIcon = "👑"
	KOIcon     = "💀"
	LostIcon   = "🔌"
	TargetIcon = "🎯"
)

// Lipgloss Styles
var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	TargetBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9"))
	DeadBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	GarbageBar  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	ScoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
)

// cellColors 方块种类与垃圾行的颜色
var cellColors = map[uint8]lipgloss.Color{
	1:             lipgloss.Color("51"),  // I
	2:             lipgloss.Color("226"), // O
	3:             lipgloss.Color("129"), // T
	4:             lipgloss.Color("46"),  // S
	5:             lipgloss.Color("196"), // Z
	6:             lipgloss.Color("21"),  // J
	7:             lipgloss.Color("208"), // L
	board.Garbage: lipgloss.Color("244"),
}

// CellStyle 棋盘格子的样式
func CellStyle(v uint8) lipgloss.Style {
	c, ok := cellColors[v]
	if !ok {
		return DimStyle
	}
	return lipgloss.NewStyle().Foreground(c)
}
