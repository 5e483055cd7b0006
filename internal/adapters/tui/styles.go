package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/example/shopfloor/internal/core/workorder"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Border(lipgloss.NormalBorder(), false, false, true, false)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0ea5e9"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	liveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

var statusColors = map[workorder.Status]lipgloss.Color{
	workorder.StatusPending:    lipgloss.Color("245"),
	workorder.StatusInProgress: lipgloss.Color("#22c55e"),
	workorder.StatusPaused:     lipgloss.Color("#eab308"),
	workorder.StatusCompleted:  lipgloss.Color("#0ea5e9"),
	workorder.StatusCanceled:   lipgloss.Color("#ef4444"),
}

func statusBadge(s workorder.Status) string {
	return lipgloss.NewStyle().Foreground(statusColors[s]).Width(12).Render(string(s))
}
