package terminal

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis-chat/internal/transcript"
)

// =============================================================================
// DISPLAY
// =============================================================================

func TestDisplay_RenderPrintsOnlyNewMessages(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	store := transcript.NewStore("Hello there")
	store.Subscribe(d.Render)
	d.Render(store.Snapshot())

	store.AppendUser("hello")
	store.SetBusy(transcript.Sending, true)
	store.AppendAssistant("hi [docs](http://x/y)")
	store.SetBusy(transcript.Sending, false)

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "Hello there"))
	assert.Equal(t, 1, strings.Count(text, "\nhello\n"))
	assert.Contains(t, text, "hi docs <http://x/y>")
	assert.Contains(t, text, "You ·")
	assert.Contains(t, text, "Jarvis ·")
	assert.NotContains(t, text, "\033[")
}

func TestDisplay_RenderAfterReset(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	store := transcript.NewStore("greeting")
	store.AppendUser("a")
	store.AppendUser("b")
	store.Subscribe(d.Render)
	d.Render(store.Snapshot())

	out.Reset()
	store.Reset()
	assert.Contains(t, out.String(), "greeting")
}

func TestDisplay_RenderResetWithOnlyGreeting(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	store := transcript.NewStore("greeting")
	store.Subscribe(d.Render)
	d.Render(store.Snapshot())

	out.Reset()
	store.Reset()
	assert.Contains(t, out.String(), "greeting")
}

func TestDisplay_Messages(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	d.PrintInfo("info")
	d.PrintWarning("warn")
	d.PrintSuccess("ok")
	d.PrintError(errors.New("bad"))

	text := out.String()
	assert.Contains(t, text, "ℹ info")
	assert.Contains(t, text, "⚠ warn")
	assert.Contains(t, text, "✓ ok")
	assert.Contains(t, text, "✗ Error: bad")
}

func TestDisplay_PrintMarkdown(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	d.PrintMarkdown("# Commands\n\nuse `/files`")
	assert.Contains(t, out.String(), "Commands")
	assert.Contains(t, out.String(), "/files")
}

func TestDisplay_SpinnerDisabledWithoutColor(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	d.ShowSpinner("Processing...")
	d.StopSpinner()
	d.Cleanup()
	assert.Empty(t, out.String())
}

func TestDisplay_SpinnerStartsAndStops(t *testing.T) {
	var out bytes.Buffer
	d := &Display{out: &out, color: true, width: 80}

	d.ShowSpinner("Uploading file...")
	d.ShowSpinner("ignored while active")
	d.StopSpinner()
	d.StopSpinner()

	text := out.String()
	assert.Contains(t, text, "Uploading file...")
	assert.NotContains(t, text, "ignored")
	assert.True(t, strings.HasSuffix(text, "\r"+clearLine()+"\r"))
}

// =============================================================================
// INPUT
// =============================================================================

func TestReader_ReadLine(t *testing.T) {
	r := NewReader(strings.NewReader("  hello  \r\nsecond\nlast"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "  hello  ", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func makeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, p := range []string{
		"report.pdf",
		"reports/q1.csv",
		"notes.txt",
		".hidden/secret.txt",
		".env",
	} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0600))
	}
	return dir
}

func TestFindMatchingFiles(t *testing.T) {
	dir := makeTree(t)

	assert.Equal(t, []string{"notes.txt", "report.pdf", filepath.Join("reports", "q1.csv")}, FindMatchingFiles(dir, ""))
	assert.Equal(t, []string{"report.pdf", filepath.Join("reports", "q1.csv")}, FindMatchingFiles(dir, "rep"))
	assert.Equal(t, []string{filepath.Join("reports", "q1.csv")}, FindMatchingFiles(dir, "reports/q"))
	assert.Empty(t, FindMatchingFiles(dir, "secret"))
}

func TestCompleteUploadPath(t *testing.T) {
	dir := makeTree(t)

	completed, candidates := CompleteUploadPath(dir, "no")
	assert.Equal(t, "notes.txt", completed)
	assert.Equal(t, []string{"notes.txt"}, candidates)

	completed, candidates = CompleteUploadPath(dir, "rep")
	assert.Equal(t, "report", completed)
	assert.Len(t, candidates, 2)

	completed, candidates = CompleteUploadPath(dir, "zzz")
	assert.Equal(t, "zzz", completed)
	assert.Empty(t, candidates)
}
