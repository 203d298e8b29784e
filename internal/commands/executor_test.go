package commands

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis-chat/internal/orchestrator"
	"jarvis-chat/internal/transcript"
)

type fakeService struct {
	files     []string
	listErr   error
	content   map[string]string
	uploads   []string
	chatReply string
}

func (f *fakeService) Chat(ctx context.Context, message string) (string, error) {
	return f.chatReply, nil
}

func (f *fakeService) Upload(ctx context.Context, filename string, content io.Reader) error {
	f.uploads = append(f.uploads, filename)
	return nil
}

func (f *fakeService) ListFiles(ctx context.Context) ([]string, error) {
	return f.files, f.listErr
}

func (f *fakeService) Download(ctx context.Context, filename string, w io.Writer) (int64, error) {
	data, ok := f.content[filename]
	if !ok {
		return 0, errors.New("file not found")
	}
	n, err := io.WriteString(w, data)
	return int64(n), err
}

func newExecutor(t *testing.T) (*Executor, *transcript.Store, *fakeService) {
	t.Helper()
	store := transcript.NewStore("")
	svc := &fakeService{chatReply: "noted", content: map[string]string{}}
	orch := orchestrator.New(store, svc)
	return NewExecutor(orch, svc, "http://jarvis.local:8000", t.TempDir()), store, svc
}

func run(t *testing.T, e *Executor, input string) Result {
	t.Helper()
	cmd, err := Parse(input)
	require.NoError(t, err)
	return e.Run(context.Background(), cmd)
}

func TestExecutor_Upload(t *testing.T) {
	e, store, svc := newExecutor(t)
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,2"), 0600))

	res := run(t, e, "/upload "+path)
	assert.NoError(t, res.Err)
	assert.Equal(t, []string{"data.csv"}, svc.uploads)
	assert.Equal(t, 3, store.Len())
}

func TestExecutor_Files(t *testing.T) {
	e, _, svc := newExecutor(t)

	res := run(t, e, "/files")
	assert.Equal(t, []string{"No files on the server yet"}, res.Lines)

	svc.files = []string{"a.txt", "b.pdf"}
	res = run(t, e, "/files")
	assert.Equal(t, []string{"2 file(s) on the server:", "  - a.txt", "  - b.pdf"}, res.Lines)

	svc.listErr = errors.New("down")
	res = run(t, e, "/files")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "failed to list files")
}

func TestExecutor_Download(t *testing.T) {
	e, _, svc := newExecutor(t)
	svc.content["out.csv"] = "a,b\n"

	res := run(t, e, "/download out.csv")
	require.NoError(t, res.Err)
	require.Len(t, res.Lines, 1)
	assert.True(t, strings.HasPrefix(res.Lines[0], "Saved out.csv to "))
	assert.Contains(t, res.Lines[0], "(4 B)")

	data, err := os.ReadFile(filepath.Join(e.downloadDir, "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	res = run(t, e, "/download missing.txt")
	require.Error(t, res.Err)
}

func TestExecutor_Links(t *testing.T) {
	e, store, _ := newExecutor(t)

	res := run(t, e, "/links")
	assert.Equal(t, []string{"The latest reply has no links"}, res.Lines)

	store.AppendAssistant("Done: [result](/api/download/result.csv) and [docs](https://docs.example.com)")
	store.AppendUser("thanks")

	res = run(t, e, "/links")
	assert.Equal(t, []string{
		"  result → http://jarvis.local:8000/api/download/result.csv",
		"  docs → https://docs.example.com",
	}, res.Lines)
}

func TestExecutor_Export(t *testing.T) {
	e, _, _ := newExecutor(t)
	path := filepath.Join(t.TempDir(), "chat.html")

	res := run(t, e, "/export "+path)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"Exported 1 messages to " + path}, res.Lines)

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestExecutor_NewHelpExit(t *testing.T) {
	e, store, _ := newExecutor(t)
	store.AppendUser("x")
	id := store.SessionID()

	res := run(t, e, "/new")
	assert.Equal(t, 1, store.Len())
	assert.NotEqual(t, id, store.SessionID())
	assert.Equal(t, []string{"Started a new conversation"}, res.Lines)

	res = run(t, e, "/help")
	assert.Equal(t, HelpMarkdown, res.Markdown)

	res = run(t, e, "/exit")
	assert.True(t, res.Quit)
}

func TestExecutor_UnknownName(t *testing.T) {
	e, _, _ := newExecutor(t)
	res := e.Run(context.Background(), Command{Name: "dance"})
	assert.Error(t, res.Err)
}

func TestNeedsIdle(t *testing.T) {
	assert.True(t, NeedsIdle(Command{Name: Upload}))
	assert.True(t, NeedsIdle(Command{Name: New}))
	assert.False(t, NeedsIdle(Command{Name: Files}))
	assert.False(t, NeedsIdle(Command{Name: Help}))
}
