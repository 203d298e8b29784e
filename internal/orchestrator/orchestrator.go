// Package orchestrator sequences chat and upload requests against the
// transcript store. Every backend failure ends up as an assistant message;
// nothing is returned to the caller.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"jarvis-chat/internal/transcript"
)

const (
	// ChatFailedReply replaces the assistant reply when a chat request fails
	ChatFailedReply = "I'm sorry, I encountered an error connecting to the server."
	// UploadFailedReply is appended when the upload itself fails
	UploadFailedReply = "Failed to upload file."
)

// UploadNotice is the user-turn entry recorded for an uploaded file
func UploadNotice(filename string) string {
	return fmt.Sprintf("[Uploaded File: %s]", filename)
}

// AcknowledgePrompt is the chat message that tells the assistant about an upload
func AcknowledgePrompt(filename string) string {
	return fmt.Sprintf("I have uploaded a file named %s. Please acknowledge it.", filename)
}

// Backend is the pair of calls the orchestrator needs
type Backend interface {
	Chat(ctx context.Context, message string) (string, error)
	Upload(ctx context.Context, filename string, content io.Reader) error
}

// Controls is the input surface owned by the front end
type Controls interface {
	ClearInput()
	ResetFileSelection()
}

type nopControls struct{}

func (nopControls) ClearInput()         {}
func (nopControls) ResetFileSelection() {}

// File is a selected file ready for upload
type File struct {
	Name    string
	Content io.Reader
}

// Orchestrator runs the send and upload flows
type Orchestrator struct {
	store    *transcript.Store
	backend  Backend
	controls Controls
	logger   *zap.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithControls sets the input surface reset by the flows
func WithControls(c Controls) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.controls = c
		}
	}
}

// WithLogger sets the logger used for absorbed failures
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an orchestrator bound to one session store
func New(store *transcript.Store, backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		backend:  backend,
		controls: nopControls{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the transcript the orchestrator writes to
func (o *Orchestrator) Store() *transcript.Store {
	return o.store
}

// SendMessage appends the user turn, asks the backend and appends its reply.
// Whitespace-only text is ignored and false is returned.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	o.store.AppendUser(text)
	o.controls.ClearInput()

	o.store.SetBusy(transcript.Sending, true)
	defer o.store.SetBusy(transcript.Sending, false)

	o.reply(ctx, text)
	return true
}

// UploadFile transfers a file, records it and lets the assistant acknowledge it.
// A nil file is ignored and false is returned.
func (o *Orchestrator) UploadFile(ctx context.Context, file *File) bool {
	if file == nil {
		return false
	}

	o.store.SetBusy(transcript.Uploading, true)
	defer o.finishUpload()

	if err := o.backend.Upload(ctx, file.Name, file.Content); err != nil {
		o.logger.Error("Error uploading file", zap.String("file", file.Name), zap.Error(err))
		o.store.AppendAssistant(UploadFailedReply)
		return true
	}
	o.logger.Debug("file uploaded", zap.String("file", file.Name))

	o.store.AppendUser(UploadNotice(file.Name))

	o.store.SetBusy(transcript.Sending, true)
	o.reply(ctx, AcknowledgePrompt(file.Name))
	return true
}

// UploadPath opens a local file and uploads it. An empty path is ignored.
func (o *Orchestrator) UploadPath(ctx context.Context, path string) bool {
	path = strings.TrimSpace(path)
	if path == "" {
		return false
	}

	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		// Same terminal state as a failed transfer
		o.store.SetBusy(transcript.Uploading, true)
		defer o.finishUpload()

		o.logger.Error("Error opening file", zap.String("path", path), zap.Error(err))
		o.store.AppendAssistant(UploadFailedReply)
		return true
	}
	defer f.Close()

	return o.UploadFile(ctx, &File{Name: name, Content: f})
}

// reply issues a chat request and appends the answer or the apology
func (o *Orchestrator) reply(ctx context.Context, message string) {
	response, err := o.backend.Chat(ctx, message)
	if err != nil {
		o.logger.Error("Error sending message", zap.Error(err))
		response = ChatFailedReply
	}
	o.store.AppendAssistant(response)
}

// finishUpload clears both flags and the file selection on every exit path
func (o *Orchestrator) finishUpload() {
	o.store.SetBusy(transcript.Uploading, false)
	o.store.SetBusy(transcript.Sending, false)
	o.controls.ResetFileSelection()
}
