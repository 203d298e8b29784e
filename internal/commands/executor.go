package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"jarvis-chat/internal/backend"
	"jarvis-chat/internal/export"
	"jarvis-chat/internal/linkify"
	"jarvis-chat/internal/orchestrator"
	"jarvis-chat/internal/transcript"
)

// FileService lists and fetches files stored on the backend
type FileService interface {
	ListFiles(ctx context.Context) ([]string, error)
	backend.Downloader
}

// Result is what a command produced for the front end to show
type Result struct {
	Lines    []string
	Markdown string
	Err      error
	Quit     bool
}

// Executor runs parsed commands against one session
type Executor struct {
	orch        *orchestrator.Orchestrator
	files       FileService
	baseURL     string
	downloadDir string
}

// NewExecutor creates an executor. baseURL resolves relative links.
func NewExecutor(orch *orchestrator.Orchestrator, files FileService, baseURL, downloadDir string) *Executor {
	return &Executor{
		orch:        orch,
		files:       files,
		baseURL:     baseURL,
		downloadDir: downloadDir,
	}
}

// NeedsIdle reports whether a command must wait until no request is in flight
func NeedsIdle(cmd Command) bool {
	return cmd.Name == Upload || cmd.Name == New
}

// Run executes cmd. Upload blocks until the whole upload flow has finished.
func (e *Executor) Run(ctx context.Context, cmd Command) Result {
	switch cmd.Name {
	case Upload:
		e.orch.UploadPath(ctx, cmd.Arg(0))
		return Result{}

	case Files:
		files, err := e.files.ListFiles(ctx)
		if err != nil {
			return Result{Err: fmt.Errorf("failed to list files: %w", err)}
		}
		if len(files) == 0 {
			return Result{Lines: []string{"No files on the server yet"}}
		}
		lines := []string{fmt.Sprintf("%d file(s) on the server:", len(files))}
		for _, f := range files {
			lines = append(lines, "  - "+f)
		}
		return Result{Lines: lines}

	case Download:
		dest := cmd.Arg(1)
		if dest == "" {
			dest = e.downloadDir
		}
		path, n, err := backend.SaveFile(ctx, e.files, cmd.Arg(0), dest)
		if err != nil {
			return Result{Err: fmt.Errorf("failed to download %s: %w", cmd.Arg(0), err)}
		}
		return Result{Lines: []string{fmt.Sprintf("Saved %s to %s (%s)", cmd.Arg(0), path, humanize.Bytes(uint64(n)))}}

	case Links:
		return e.links()

	case Export:
		snap := e.orch.Store().Snapshot()
		if err := export.WriteFile(cmd.Arg(0), snap); err != nil {
			return Result{Err: err}
		}
		return Result{Lines: []string{fmt.Sprintf("Exported %d messages to %s", len(snap.Messages), cmd.Arg(0))}}

	case New:
		e.orch.Store().Reset()
		return Result{Lines: []string{"Started a new conversation"}}

	case Help:
		return Result{Markdown: HelpMarkdown}

	case Exit:
		return Result{Quit: true}
	}

	return Result{Err: fmt.Errorf("unsupported command /%s", cmd.Name)}
}

// links lists the links of the newest assistant message
func (e *Executor) links() Result {
	msgs := e.orch.Store().Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != transcript.RoleAssistant {
			continue
		}
		links := linkify.Resolve(linkify.Links(msgs[i].Content), e.baseURL)
		if len(links) == 0 {
			break
		}
		lines := make([]string, 0, len(links))
		for _, l := range links {
			lines = append(lines, fmt.Sprintf("  %s → %s", l.Label, l.URL))
		}
		return Result{Lines: lines}
	}
	return Result{Lines: []string{"The latest reply has no links"}}
}
