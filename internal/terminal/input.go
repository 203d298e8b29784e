package terminal

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxSuggestions bounds how many paths FindMatchingFiles returns
const maxSuggestions = 100

// Reader reads lines of user input
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps an input stream
func NewReader(in io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(in)}
}

// ReadLine reads a line of input from the user. A final line without a
// newline is returned before io.EOF.
func (r *Reader) ReadLine() (string, error) {
	input, err := r.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && input != "" {
			return strings.TrimRight(input, "\r\n"), nil
		}
		return "", err
	}

	// Trim the newline only, leading and trailing spaces are part of the message
	return strings.TrimRight(input, "\r\n"), nil
}

// FindMatchingFiles searches for files matching a partial path
func FindMatchingFiles(workingDir string, partial string) []string {
	matches := []string{}

	// Determine search directory and pattern
	searchDir := workingDir
	pattern := strings.ToLower(partial)

	if strings.Contains(partial, "/") {
		// If partial contains /, split into dir and pattern
		dir, file := filepath.Split(partial)
		searchDir = filepath.Join(workingDir, dir)
		pattern = strings.ToLower(file)
	}

	// Walk the search directory (limit depth to avoid slow searches)
	filepath.Walk(searchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		// Get relative path from working directory
		relPath, err := filepath.Rel(workingDir, path)
		if err != nil {
			return nil
		}

		// Skip the search root itself
		if path == searchDir {
			return nil
		}

		// Skip hidden files and directories
		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// For files, check if they match
		if !info.IsDir() {
			relPathLower := strings.ToLower(relPath)

			// Match if: no pattern (show all), or the path or name contains pattern
			isMatch := pattern == "" ||
				strings.Contains(relPathLower, pattern) ||
				strings.Contains(strings.ToLower(info.Name()), pattern)

			if isMatch && len(matches) < maxSuggestions {
				matches = append(matches, relPath)
			}
		}

		// Limit depth to avoid scanning too deep
		depth := strings.Count(relPath, string(filepath.Separator))
		if info.IsDir() && depth > 4 {
			return filepath.SkipDir
		}

		return nil
	})

	sort.Strings(matches)
	return matches
}

// CompleteUploadPath extends partial to the longest prefix shared by every
// matching file. The second result lists the candidates.
func CompleteUploadPath(workingDir, partial string) (string, []string) {
	var candidates []string
	for _, m := range FindMatchingFiles(workingDir, partial) {
		if strings.HasPrefix(strings.ToLower(m), strings.ToLower(partial)) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return partial, nil
	}

	prefix := candidates[0]
	for _, c := range candidates[1:] {
		prefix = commonPrefix(prefix, c)
	}
	if len(prefix) < len(partial) {
		return partial, candidates
	}
	return prefix, candidates
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
