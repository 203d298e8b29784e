package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colorAccent  = lipgloss.Color("14")
	colorUser    = lipgloss.Color("10")
	colorMuted   = lipgloss.Color("8")
	colorError   = lipgloss.Color("9")
	colorWarning = lipgloss.Color("11")
)

type styles struct {
	header        lipgloss.Style
	headerMeta    lipgloss.Style
	online        lipgloss.Style
	userBubble    lipgloss.Style
	botBubble     lipgloss.Style
	userLabel     lipgloss.Style
	botLabel      lipgloss.Style
	timestamp     lipgloss.Style
	link          lipgloss.Style
	status        lipgloss.Style
	notice        lipgloss.Style
	errorNotice   lipgloss.Style
	attachment    lipgloss.Style
	inputBorder   lipgloss.Style
	inputDisabled lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		header:     lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		headerMeta: lipgloss.NewStyle().Foreground(colorMuted),
		online:     lipgloss.NewStyle().Bold(true).Foreground(colorUser),
		userBubble: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorUser).
			Padding(0, 1),
		botBubble: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1),
		userLabel:   lipgloss.NewStyle().Bold(true).Foreground(colorUser),
		botLabel:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		timestamp:   lipgloss.NewStyle().Foreground(colorMuted),
		link:        lipgloss.NewStyle().Foreground(colorAccent).Underline(true),
		status:      lipgloss.NewStyle().Foreground(colorWarning),
		notice:      lipgloss.NewStyle().Foreground(colorMuted),
		errorNotice: lipgloss.NewStyle().Foreground(colorError),
		attachment:  lipgloss.NewStyle().Foreground(colorWarning).Italic(true),
		inputBorder: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorAccent),
		inputDisabled: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorMuted),
	}
}
