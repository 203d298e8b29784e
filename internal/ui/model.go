// Package ui is the interactive full-screen chat client.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"jarvis-chat/internal/commands"
	"jarvis-chat/internal/orchestrator"
	"jarvis-chat/internal/terminal"
	"jarvis-chat/internal/transcript"
)

const (
	inputHeight     = 3
	maxCompletions  = 8
	defaultWidth    = 80
	defaultHeight   = 24
	placeholderIdle = "Ask me anything... (Enter to send, Alt+Enter for newline)"
	placeholderBusy = "Waiting for Jarvis..."
)

// Results of work run off the event loop
type (
	sendDoneMsg struct{}
	resultMsg   struct {
		res  commands.Result
		idle bool
	}
)

// Model is the Bubble Tea model for the chat screen
type Model struct {
	ctx        context.Context
	orch       *orchestrator.Orchestrator
	exec       *commands.Executor
	backendURL string
	workDir    string

	st       styles
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	snap       transcript.Snapshot
	pending    bool
	attachment string
	notices    []string
	noticeErr  bool

	width  int
	height int
}

// New creates the chat model. workDir roots /upload completion.
func New(ctx context.Context, orch *orchestrator.Orchestrator, exec *commands.Executor, backendURL, workDir string) Model {
	ta := textarea.New()
	ta.Placeholder = placeholderIdle
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorWarning)

	m := Model{
		ctx:        ctx,
		orch:       orch,
		exec:       exec,
		backendURL: backendURL,
		workDir:    workDir,
		st:         defaultStyles(),
		input:      ta,
		viewport:   viewport.New(defaultWidth, defaultHeight),
		spinner:    sp,
		snap:       orch.Store().Snapshot(),
		width:      defaultWidth,
		height:     defaultHeight,
	}
	m.layout()
	return m
}

// Init starts the cursor blink and the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 20)
		m.height = max(msg.Height, 10)
		m.layout()
		return m, nil

	case transcriptMsg:
		m.snap = msg.snap
		m.refreshInput()
		m.refreshTranscript()
		return m, nil

	case fileResetMsg:
		m.attachment = ""
		m.layout()
		return m, nil

	case sendDoneMsg:
		m.pending = false
		m.refreshInput()
		return m, nil

	case resultMsg:
		if msg.idle {
			m.pending = false
			m.refreshInput()
		}
		if msg.res.Quit {
			return m, tea.Quit
		}
		m.showResult(msg.res)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "tab":
			m.complete()
			return m, nil
		case "pgup", "pgdown", "ctrl+up", "ctrl+down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// locked reports whether sending and uploading are disabled
func (m Model) locked() bool {
	return m.pending || m.orch.Store().Locked()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	if !commands.IsCommand(text) {
		if m.locked() {
			return m, nil
		}
		m.input.Reset()
		m.pending = true
		m.clearNotices()
		m.refreshInput()
		return m, m.send(commands.ChatText(text))
	}

	m.input.Reset()
	m.clearNotices()
	cmd, err := commands.Parse(text)
	if err != nil {
		m.showResult(commands.Result{Err: err})
		return m, nil
	}

	idle := commands.NeedsIdle(cmd)
	if idle {
		if m.locked() {
			m.showResult(commands.Result{Lines: []string{"Please wait for the current request to finish"}})
			return m, nil
		}
		m.pending = true
		m.refreshInput()
	}
	if path := strings.TrimSpace(cmd.Arg(0)); cmd.Name == commands.Upload && path != "" {
		m.attachment = filepath.Base(path)
		m.layout()
	}
	return m, m.run(cmd, idle)
}

func (m Model) send(text string) tea.Cmd {
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		orch.SendMessage(ctx, text)
		return sendDoneMsg{}
	}
}

func (m Model) run(cmd commands.Command, idle bool) tea.Cmd {
	ctx, exec := m.ctx, m.exec
	return func() tea.Msg {
		return resultMsg{res: exec.Run(ctx, cmd), idle: idle}
	}
}

// complete handles Tab for command names and /upload paths
func (m *Model) complete() {
	value := m.input.Value()
	if !commands.IsCommand(value) {
		return
	}
	value = strings.TrimLeft(value, " ")

	if rest, ok := strings.CutPrefix(value, "/upload "); ok {
		completed, candidates := terminal.CompleteUploadPath(m.workDir, rest)
		m.input.SetValue("/upload " + completed)
		if len(candidates) > 1 {
			m.showCandidates(candidates)
		}
		return
	}

	if strings.Contains(value, " ") {
		return
	}
	names := commands.Complete(strings.TrimPrefix(value, "/"))
	switch len(names) {
	case 0:
	case 1:
		m.input.SetValue("/" + string(names[0]) + " ")
	default:
		candidates := make([]string, len(names))
		for i, n := range names {
			candidates[i] = "/" + string(n)
		}
		m.showCandidates(candidates)
	}
}

func (m *Model) showCandidates(candidates []string) {
	lines := candidates
	if len(lines) > maxCompletions {
		lines = append(lines[:maxCompletions:maxCompletions], fmt.Sprintf("... and %d more", len(candidates)-maxCompletions))
	}
	m.notices = lines
	m.noticeErr = false
	m.layout()
}

func (m *Model) showResult(res commands.Result) {
	switch {
	case res.Err != nil:
		m.notices = []string{"✗ " + res.Err.Error()}
		m.noticeErr = true
	case res.Markdown != "":
		m.notices = strings.Split(strings.TrimRight(m.renderMarkdown(res.Markdown), "\n"), "\n")
		m.noticeErr = false
	default:
		m.notices = res.Lines
		m.noticeErr = false
	}
	m.layout()
}

func (m *Model) clearNotices() {
	if len(m.notices) == 0 {
		return
	}
	m.notices = nil
	m.layout()
}

func (m Model) renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(m.width-4),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m *Model) refreshInput() {
	if m.locked() {
		m.input.Placeholder = placeholderBusy
	} else {
		m.input.Placeholder = placeholderIdle
	}
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.st.renderTranscript(m.snap.Messages, m.viewport.Width, m.backendURL))
	m.viewport.GotoBottom()
}

// layout sizes the viewport to whatever the other sections leave
func (m *Model) layout() {
	m.input.SetWidth(m.width - 2)

	// header, blank line, status, input border, hint
	reserved := 2 + 1 + inputHeight + 2 + 1 + len(m.notices)
	if m.attachment != "" {
		reserved++
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-reserved, 3)
	m.refreshTranscript()
}

// View renders the screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.st.header.Render("JARVIS v2.0"))
	b.WriteString(m.st.headerMeta.Render("  " + m.backendURL + "  "))
	b.WriteString(m.st.online.Render("● ONLINE"))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if label := busyLabel(m.snap); label != "" {
		b.WriteString(m.spinner.View() + m.st.status.Render(label))
	}
	b.WriteString("\n")

	noticeStyle := m.st.notice
	if m.noticeErr {
		noticeStyle = m.st.errorNotice
	}
	for _, line := range m.notices {
		b.WriteString(noticeStyle.Render(line) + "\n")
	}

	if m.attachment != "" {
		b.WriteString(m.st.attachment.Render("📎 Attached: "+m.attachment) + "\n")
	}

	box := m.st.inputBorder
	if m.locked() {
		box = m.st.inputDisabled
	}
	b.WriteString(box.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.st.notice.Render("Enter send · Alt+Enter newline · Tab complete · /help · Ctrl+C quit"))

	return b.String()
}
