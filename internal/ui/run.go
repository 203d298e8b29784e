package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"jarvis-chat/internal/backend"
	"jarvis-chat/internal/commands"
	"jarvis-chat/internal/orchestrator"
	"jarvis-chat/internal/transcript"
)

// Options configures Run
type Options struct {
	Store       *transcript.Store
	Client      *backend.Client
	Logger      *zap.Logger
	DownloadDir string
	WorkDir     string
}

// Run shows the chat screen until the user quits or ctx is cancelled
func Run(ctx context.Context, opts Options) error {
	b := &bridge{}
	orch := orchestrator.New(opts.Store, opts.Client,
		orchestrator.WithControls(b),
		orchestrator.WithLogger(opts.Logger),
	)
	exec := commands.NewExecutor(orch, opts.Client, opts.Client.BaseURL(), opts.DownloadDir)

	m := New(ctx, orch, exec, opts.Client.BaseURL(), opts.WorkDir)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	b.attach(p.Send)
	unsubscribe := opts.Store.Subscribe(b.onChange)
	defer unsubscribe()

	_, err := p.Run()
	// Flows still in flight may report after the program stopped
	b.attach(nil)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
