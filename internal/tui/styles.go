package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	errorColor   = lipgloss.Color("#F87171") // Red
	borderColor  = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	listBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	draggedStyle = lipgloss.NewStyle().
			Reverse(true)

	detailName = lipgloss.NewStyle().
			Bold(true)

	detailTime = lipgloss.NewStyle().
			Italic(true).
			Foreground(mutedColor)

	detailLink = lipgloss.NewStyle().
			Foreground(mutedColor)

	noticeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)
)
