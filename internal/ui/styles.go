package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Orangered is the accent, everything else sits on a gray ramp.
var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#D93A00", Dark: "#FF4500"}
	colorLink   = lipgloss.AdaptiveColor{Light: "#0045AC", Dark: "#7193FF"}
	colorText   = lipgloss.AdaptiveColor{Light: "#1A1A1B", Dark: "#D7DADC"}
	colorFaint  = lipgloss.AdaptiveColor{Light: "#787C7E", Dark: "#818384"}
	colorBar    = lipgloss.AdaptiveColor{Light: "#EDEFF1", Dark: "#272729"}
	colorEdge   = lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#343536"}
	colorAuthor = lipgloss.AdaptiveColor{Light: "#46A508", Dark: "#6BC43A"}
	colorError  = lipgloss.AdaptiveColor{Light: "#C4000C", Dark: "#FF585B"}
)

// Rows.
var (
	SelectedItem = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorAccent).Padding(0, 1)
	NormalItem   = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	MetaItem     = lipgloss.NewStyle().Foreground(colorFaint)
	ScoreBadge   = lipgloss.NewStyle().Foreground(colorAccent).Background(colorBar).Padding(0, 1).MarginRight(1)
)

// Frame: header, columns and the status bar.
var (
	HeaderBar   = lipgloss.NewStyle().Foreground(colorText).Background(colorBar).Padding(0, 1)
	HeaderTitle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	Pane        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorEdge).Padding(0, 1)
	FocusedPane = Pane.BorderForeground(colorLink)
	PaneTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorLink)

	StatusBar     = lipgloss.NewStyle().Foreground(colorText).Background(colorBar).Padding(0, 1)
	StatusBarKey  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	StatusBarText = lipgloss.NewStyle().Foreground(colorFaint)
)

// Detail view.
var (
	DetailTitle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	ReplyAuthor = lipgloss.NewStyle().Bold(true).Foreground(colorAuthor)
)

// Feedback: errors, hints, the spinner and the debug overlay.
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true).Padding(0, 1)
	HelpStyle    = lipgloss.NewStyle().Foreground(colorFaint).Padding(1, 2)
	SpinnerStyle = lipgloss.NewStyle().Foreground(colorAccent)

	DebugPanel       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorLink).Padding(1, 2)
	DebugHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorLink)
)
