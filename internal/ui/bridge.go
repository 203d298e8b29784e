package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"jarvis-chat/internal/transcript"
)

// Messages delivered into the Bubble Tea loop from outside it
type (
	transcriptMsg struct{ snap transcript.Snapshot }
	fileResetMsg  struct{}
)

// bridge forwards store changes and input controls into a running program.
// Orchestrator flows run in commands off the event loop, so everything is
// delivered as a message.
type bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (b *bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *bridge) deliver(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// onChange is subscribed to the transcript store
func (b *bridge) onChange(snap transcript.Snapshot) {
	b.deliver(transcriptMsg{snap: snap})
}

// ClearInput implements orchestrator.Controls. The model already cleared
// the input when the message was submitted, and clearing it again here would
// drop anything typed since.
func (b *bridge) ClearInput() {}

// ResetFileSelection implements orchestrator.Controls
func (b *bridge) ResetFileSelection() {
	b.deliver(fileResetMsg{})
}
