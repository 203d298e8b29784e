// Package commands parses the slash commands typed into the chat input.
package commands

import (
	"fmt"
	"strings"
)

// Name identifies a slash command
type Name string

const (
	Upload   Name = "upload"
	Files    Name = "files"
	Download Name = "download"
	Links    Name = "links"
	Export   Name = "export"
	New      Name = "new"
	Help     Name = "help"
	Exit     Name = "exit"
)

// aliases maps every accepted spelling to its command
var aliases = map[string]Name{
	"upload":   Upload,
	"attach":   Upload,
	"files":    Files,
	"ls":       Files,
	"download": Download,
	"get":      Download,
	"links":    Links,
	"export":   Export,
	"new":      New,
	"reset":    New,
	"help":     Help,
	"?":        Help,
	"exit":     Exit,
	"quit":     Exit,
}

// Names lists the canonical command names in help order
func Names() []Name {
	return []Name{Upload, Files, Download, Links, Export, New, Help, Exit}
}

// Complete returns the canonical names starting with prefix
func Complete(prefix string) []Name {
	var out []Name
	for _, n := range Names() {
		if strings.HasPrefix(string(n), prefix) {
			out = append(out, n)
		}
	}
	return out
}

// Command is a parsed slash command
type Command struct {
	Name Name
	Args []string
}

// Arg returns the i-th argument or an empty string
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// IsCommand reports whether the input should be treated as a command rather
// than chat text. Only a leading "/word" counts: "//text" is an escaped chat
// message and a path like "/usr/bin/python" is sent as chat.
func IsCommand(input string) bool {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") || strings.HasPrefix(input, "//") {
		return false
	}
	word := strings.Fields(input)[0]
	return !strings.Contains(word[1:], "/")
}

// ChatText returns the text to send for chat input, turning a leading "//"
// into a single "/"
func ChatText(input string) string {
	trimmed := strings.TrimLeft(input, " \t")
	if strings.HasPrefix(trimmed, "//") {
		return trimmed[1:]
	}
	return input
}

// Parse turns "/name arg..." into a Command. Arguments are split on
// whitespace; double quotes group an argument containing spaces.
func Parse(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return Command{}, fmt.Errorf("not a command: %q", input)
	}

	fields, err := split(input[1:])
	if err != nil {
		return Command{}, err
	}
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	name, ok := aliases[strings.ToLower(fields[0])]
	if !ok {
		return Command{}, fmt.Errorf("unknown command /%s (try /help)", fields[0])
	}

	cmd := Command{Name: name, Args: fields[1:]}
	if err := validate(cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

func validate(cmd Command) error {
	switch cmd.Name {
	case Upload:
		if len(cmd.Args) != 1 || blank(cmd.Arg(0)) {
			return fmt.Errorf("usage: /upload <path>")
		}
	case Download:
		if len(cmd.Args) < 1 || len(cmd.Args) > 2 || blank(cmd.Arg(0)) {
			return fmt.Errorf("usage: /download <name> [dest]")
		}
		if len(cmd.Args) == 2 && blank(cmd.Arg(1)) {
			return fmt.Errorf("usage: /download <name> [dest]")
		}
	case Export:
		if len(cmd.Args) != 1 || blank(cmd.Arg(0)) {
			return fmt.Errorf("usage: /export <file.html>")
		}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// split breaks s into fields honoring double quotes
func split(s string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	hasField := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasField = true
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			if hasField {
				fields = append(fields, cur.String())
				cur.Reset()
				hasField = false
			}
		default:
			cur.WriteRune(r)
			hasField = true
		}
	}

	if inQuotes {
		return nil, fmt.Errorf("unterminated quote")
	}
	if hasField {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
