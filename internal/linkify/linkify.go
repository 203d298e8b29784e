// Package linkify splits message text into plain and [label](url) link segments
// and renders them for the terminal or as HTML.
package linkify

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// linkPattern matches markdown-style links, non-greedy on both parts
var linkPattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

// Kind tells plain text and links apart
type Kind int

const (
	Plain Kind = iota
	Link
)

// Segment is one piece of parsed message content
type Segment struct {
	Kind  Kind
	Text  string // raw text of the segment
	Label string // link label, empty for plain segments
	URL   string // link target, empty for plain segments
}

// Parse partitions content into alternating plain and link segments.
// For n links the result always has 2n+1 segments, starting and ending with
// a plain segment that may be empty.
func Parse(content string) []Segment {
	matches := linkPattern.FindAllStringSubmatchIndex(content, -1)
	segments := make([]Segment, 0, 2*len(matches)+1)

	pos := 0
	for _, m := range matches {
		segments = append(segments, Segment{Kind: Plain, Text: content[pos:m[0]]})
		segments = append(segments, Segment{
			Kind:  Link,
			Text:  content[m[0]:m[1]],
			Label: content[m[2]:m[3]],
			URL:   content[m[4]:m[5]],
		})
		pos = m[1]
	}
	segments = append(segments, Segment{Kind: Plain, Text: content[pos:]})

	return segments
}

// Links returns only the link segments of content
func Links(content string) []Segment {
	var links []Segment
	for _, seg := range Parse(content) {
		if seg.Kind == Link {
			links = append(links, seg)
		}
	}
	return links
}

// Resolve returns a copy of segments with link URLs made absolute against
// base. Links are left untouched when base or the URL does not parse.
func Resolve(segments []Segment, base string) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	if base == "" {
		return out
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return out
	}

	for i, seg := range out {
		if seg.Kind != Link {
			continue
		}
		ref, err := url.Parse(seg.URL)
		if err != nil {
			continue
		}
		out[i].URL = baseURL.ResolveReference(ref).String()
	}
	return out
}

// Nodes converts segments into HTML nodes. Links open in a new browsing
// context and leak neither referrer nor opener.
func Nodes(segments []Segment) []*html.Node {
	nodes := make([]*html.Node, 0, len(segments))
	for _, seg := range segments {
		if seg.Kind != Link {
			if seg.Text == "" {
				continue
			}
			nodes = append(nodes, &html.Node{Type: html.TextNode, Data: seg.Text})
			continue
		}

		a := &html.Node{
			Type:     html.ElementNode,
			Data:     "a",
			DataAtom: atom.A,
			Attr: []html.Attribute{
				{Key: "href", Val: seg.URL},
				{Key: "target", Val: "_blank"},
				{Key: "rel", Val: "noopener noreferrer"},
			},
		}
		a.AppendChild(&html.Node{Type: html.TextNode, Data: seg.Label})
		nodes = append(nodes, a)
	}
	return nodes
}

// RenderHTML writes segments as an HTML fragment wrapped in a
// whitespace-preserving div
func RenderHTML(w io.Writer, segments []Segment) error {
	div := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "style", Val: "white-space: pre-wrap"}},
	}
	for _, n := range Nodes(segments) {
		div.AppendChild(n)
	}
	return html.Render(w, div)
}

// DefaultLinkStyle is the link style shared by the terminal front ends
var DefaultLinkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Underline(true)

// RenderTerminal renders segments as terminal text with OSC 8 hyperlinks
func RenderTerminal(segments []Segment, style lipgloss.Style) string {
	var sb strings.Builder
	for _, seg := range segments {
		if seg.Kind != Link {
			sb.WriteString(seg.Text)
			continue
		}
		sb.WriteString(termenv.Hyperlink(seg.URL, style.Render("↓ "+seg.Label)))
	}
	return sb.String()
}
