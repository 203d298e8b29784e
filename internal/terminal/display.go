package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"jarvis-chat/internal/linkify"
	"jarvis-chat/internal/transcript"
)

// Display prints the transcript line by line for non-interactive terminals
type Display struct {
	out   io.Writer
	color bool
	width int

	mu            sync.Mutex
	session       string
	printed       int
	spinnerActive bool
	spinnerDone   chan struct{}
	spinnerExited chan struct{}
}

// NewDisplay creates a new display instance writing to out
func NewDisplay(out io.Writer) *Display {
	width := 80
	color := false
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		color = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &Display{
		out:   out,
		color: color,
		width: width,
	}
}

// Color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

func (d *Display) paint(color, s string) string {
	if !d.color {
		return s
	}
	return color + s + colorReset
}

// PrintWelcome displays the welcome banner
func (d *Display) PrintWelcome(backendURL string) {
	fmt.Fprintln(d.out, d.paint(colorCyan, "JARVIS v2.0"))
	fmt.Fprintln(d.out, d.paint(colorGray, "Backend: "+backendURL))
	fmt.Fprintln(d.out, d.paint(colorGray, "Type a message, /help for commands or /exit to quit"))
}

// PrintGoodbye displays the goodbye message
func (d *Display) PrintGoodbye() {
	fmt.Fprintf(d.out, "\n%s\n", d.paint(colorCyan, "Goodbye!"))
}

// PrintError displays an error message
func (d *Display) PrintError(err error) {
	d.StopSpinner()
	fmt.Fprintln(d.out, d.paint(colorRed, fmt.Sprintf("✗ Error: %v", err)))
}

// PrintInfo displays an info message
func (d *Display) PrintInfo(msg string) {
	d.StopSpinner()
	fmt.Fprintln(d.out, d.paint(colorCyan, "ℹ "+msg))
}

// PrintWarning displays a warning message
func (d *Display) PrintWarning(msg string) {
	d.StopSpinner()
	fmt.Fprintln(d.out, d.paint(colorYellow, "⚠ "+msg))
}

// PrintSuccess displays a success message
func (d *Display) PrintSuccess(msg string) {
	d.StopSpinner()
	fmt.Fprintln(d.out, d.paint(colorGreen, "✓ "+msg))
}

// PrintMarkdown renders markdown with glamour, falling back to the raw text
func (d *Display) PrintMarkdown(md string) {
	d.StopSpinner()

	style := "notty"
	if d.color {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(d.width-4),
	)
	if err == nil {
		if rendered, err := renderer.Render(md); err == nil {
			fmt.Fprint(d.out, rendered)
			return
		}
	}
	fmt.Fprintln(d.out, md)
}

// PrintPrompt displays the user input prompt
func (d *Display) PrintPrompt() {
	fmt.Fprintf(d.out, "\n%s", d.paint(colorGreen, "> "))
}

// PrintMessage prints one transcript entry with its links resolved
func (d *Display) PrintMessage(msg transcript.Message) {
	who := d.paint(colorBlue, "Jarvis")
	if msg.Role == transcript.RoleUser {
		who = d.paint(colorGreen, "You")
	}

	var body string
	if d.color {
		body = linkify.RenderTerminal(linkify.Parse(msg.Content), linkify.DefaultLinkStyle)
	} else {
		body = plainText(msg.Content)
	}

	fmt.Fprintf(d.out, "\n%s %s\n", who, d.paint(colorGray, "· "+msg.Timestamp.Format("15:04:05")))
	fmt.Fprintln(d.out, body)
}

// Render is a transcript.Listener: it prints messages not yet shown and
// drives the spinner from the busy flags
func (d *Display) Render(snap transcript.Snapshot) {
	d.mu.Lock()
	if snap.SessionID != d.session || len(snap.Messages) < d.printed {
		// new session, print from the greeting again
		d.session = snap.SessionID
		d.printed = 0
	}
	pending := snap.Messages[d.printed:]
	d.printed = len(snap.Messages)
	d.mu.Unlock()

	if len(pending) > 0 {
		d.StopSpinner()
	}
	for _, msg := range pending {
		d.PrintMessage(msg)
	}

	switch {
	case snap.Uploading:
		d.ShowSpinner("Uploading file...")
	case snap.Sending:
		d.ShowSpinner("Processing...")
	default:
		d.StopSpinner()
	}
}

// ShowSpinner displays a spinner with a message
func (d *Display) ShowSpinner(msg string) {
	if !d.color {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.spinnerActive {
		return
	}

	d.spinnerActive = true
	done := make(chan struct{})
	exited := make(chan struct{})
	d.spinnerDone = done
	d.spinnerExited = exited

	go func() {
		defer close(exited)
		spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			fmt.Fprintf(d.out, "\r%s%s %s%s", colorCyan, spinnerChars[i], msg, colorReset)
			i = (i + 1) % len(spinnerChars)

			select {
			case <-done:
				// Clear the spinner line
				fmt.Fprintf(d.out, "\r%s\r", clearLine())
				return
			case <-ticker.C:
			}
		}
	}()
}

// StopSpinner stops the currently active spinner and waits for it to clear its line
func (d *Display) StopSpinner() {
	d.mu.Lock()
	if !d.spinnerActive {
		d.mu.Unlock()
		return
	}
	d.spinnerActive = false
	done, exited := d.spinnerDone, d.spinnerExited
	d.mu.Unlock()

	close(done)
	<-exited
}

// Cleanup ensures the display is in a good state before exit
func (d *Display) Cleanup() {
	d.StopSpinner()
}

// clearLine returns ANSI escape code to clear the current line
func clearLine() string {
	return "\033[2K"
}

// plainText renders links as "label <url>" for outputs without hyperlink support
func plainText(content string) string {
	var sb strings.Builder
	for _, seg := range linkify.Parse(content) {
		if seg.Kind == linkify.Link {
			fmt.Fprintf(&sb, "%s <%s>", seg.Label, seg.URL)
			continue
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}
