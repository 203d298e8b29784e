// Package export writes a transcript as a standalone HTML page.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"jarvis-chat/internal/linkify"
	"jarvis-chat/internal/transcript"
)

const pageStyle = `body{font-family:sans-serif;background:#020617;color:#e2e8f0;max-width:48rem;margin:2rem auto}
.msg{border-radius:1rem;padding:1rem;margin:1rem 0}
.user{background:#0e749033;margin-left:15%}
.assistant{background:#1e293b99;margin-right:15%}
.who{font-size:.75rem;font-weight:bold;text-transform:uppercase;opacity:.5;margin-bottom:.5rem}
a{color:#22d3ee}`

// WriteHTML renders the snapshot as a complete HTML document
func WriteHTML(w io.Writer, snap transcript.Snapshot) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	root.AppendChild(head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	head.AppendChild(withText(element(atom.Title), "Jarvis conversation "+snap.SessionID))
	head.AppendChild(withText(element(atom.Style), pageStyle))

	body := element(atom.Body)
	root.AppendChild(body)

	for _, msg := range snap.Messages {
		body.AppendChild(messageNode(msg))
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("failed to render transcript: %w", err)
	}
	return nil
}

// WriteFile writes the snapshot to path, replacing it atomically
func WriteFile(path string, snap transcript.Snapshot) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	// Write to temp file
	tempPath := path + ".tmp"
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := WriteHTML(f, snap); err != nil {
		f.Close()
		os.Remove(tempPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func messageNode(msg transcript.Message) *html.Node {
	who := "Jarvis"
	if msg.Role == transcript.RoleUser {
		who = "You"
	}

	div := element(atom.Div, html.Attribute{Key: "class", Val: "msg " + string(msg.Role)})
	header := withText(element(atom.Div, html.Attribute{Key: "class", Val: "who"}), who+" · "+msg.Timestamp.Format("15:04:05"))
	div.AppendChild(header)

	content := element(atom.Div, html.Attribute{Key: "style", Val: "white-space: pre-wrap"})
	for _, n := range linkify.Nodes(linkify.Parse(msg.Content)) {
		content.AppendChild(n)
	}
	div.AppendChild(content)

	return div
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
