package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrChatFailed wraps every failure of POST /api/chat
	ErrChatFailed = errors.New("chat request failed")
	// ErrUploadFailed wraps every failure of POST /api/upload
	ErrUploadFailed = errors.New("upload request failed")
	// ErrNotFound is returned when a download names a missing file
	ErrNotFound = errors.New("file not found")
)

// StatusError reports a non-2xx response
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
