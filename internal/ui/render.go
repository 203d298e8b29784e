package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jarvis-chat/internal/linkify"
	"jarvis-chat/internal/transcript"
)

// bubbleWidth is the share of the viewport a message may take
const bubbleWidth = 0.7

// renderMessage draws one message as a bubble. User messages sit on the right.
// Relative links are resolved against baseURL.
func (s styles) renderMessage(msg transcript.Message, width int, baseURL string) string {
	maxWidth := int(float64(width) * bubbleWidth)
	if maxWidth < 20 {
		maxWidth = 20
	}

	label := s.botLabel.Render("JARVIS")
	bubble := s.botBubble
	if msg.Role == transcript.RoleUser {
		label = s.userLabel.Render("YOU")
		bubble = s.userBubble
	}
	header := label + s.timestamp.Render(" · "+msg.Timestamp.Format("15:04"))

	body := linkify.RenderTerminal(linkify.Resolve(linkify.Parse(msg.Content), baseURL), s.link)
	// Border and padding take four columns
	body = lipgloss.NewStyle().Width(maxWidth - 4).Render(body)
	block := lipgloss.JoinVertical(lipgloss.Left, header, bubble.Render(body))

	if msg.Role == transcript.RoleUser && width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}
	return block
}

// renderTranscript draws every message, oldest first
func (s styles) renderTranscript(msgs []transcript.Message, width int, baseURL string) string {
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, s.renderMessage(msg, width, baseURL))
	}
	return strings.Join(blocks, "\n\n")
}

// busyLabel is the status text for the current busy flags
func busyLabel(snap transcript.Snapshot) string {
	switch {
	case snap.Uploading:
		return "Uploading file..."
	case snap.Sending:
		return "Processing..."
	}
	return ""
}
