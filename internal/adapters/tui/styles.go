package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Teal     = lipgloss.Color("#0d7377")
	OffWhite = lipgloss.Color("#f8f7f4")
	Muted    = lipgloss.Color("#8a8a8a")
	Amber    = lipgloss.Color("#e0a526")
	Red      = lipgloss.Color("#d0464b")

	HeaderStyle = lipgloss.NewStyle().
			Background(Teal).
			Foreground(OffWhite).
			Bold(true).
			Padding(0, 1)

	FilterBarStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	ChatPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Teal).
			Padding(0, 1)

	InputBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Teal).
			Padding(0, 1)

	UserMessageStyle = lipgloss.NewStyle().
				Foreground(OffWhite).
				Bold(true)

	AssistantMessageStyle = lipgloss.NewStyle().
				Foreground(Teal)

	ItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	OutOfStockStyle = lipgloss.NewStyle().
			Foreground(Red)

	RatingStyle = lipgloss.NewStyle().
			Foreground(Amber)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Padding(0, 1)
)
