package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept for error messages
const maxErrorBody = 512

// Client handles communication with the assistant backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a new backend client. A zero timeout means requests
// are only bounded by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends one message and returns the assistant reply
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	// Marshal request to JSON
	jsonData, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %w", ErrChatFailed, err)
	}

	// Create HTTP request
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", ErrChatFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	// Execute request
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrChatFailed, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", fmt.Errorf("%w: %w", ErrChatFailed, statusError("chat", resp))
	}

	// Parse response
	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", ErrChatFailed, err)
	}

	return chatResp.Response, nil
}

// Upload sends a file as the multipart field "file"
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) error {
	// The form is streamed through a pipe so the file is never held in memory
	pr, pw := io.Pipe()
	defer pr.Close()
	writer := multipart.NewWriter(pw)

	copied := make(chan error, 1)
	go func() {
		err := writeForm(writer, filename, content)
		copied <- err
		pw.CloseWithError(err)
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", pr)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrUploadFailed, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		select {
		case copyErr := <-copied:
			if copyErr != nil {
				return fmt.Errorf("%w: %w", ErrUploadFailed, copyErr)
			}
		default:
		}
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("%w: %w", ErrUploadFailed, statusError("upload", resp))
	}

	// Body is not inspected, drain it so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// writeForm writes content as the "file" field and closes the form
func writeForm(writer *multipart.Writer, filename string, content io.Reader) error {
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}
	return nil
}

// ListFiles returns the names of files stored on the backend
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError("list files", resp)
	}

	var result FilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Files == nil {
		return []string{}, nil
	}

	return result.Files, nil
}

// Download streams a stored file into w and returns the number of bytes written
func (c *Client) Download(ctx context.Context, filename string, w io.Writer) (int64, error) {
	endpoint := c.baseURL + "/api/download/" + url.PathEscape(filename)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	if !isSuccess(resp.StatusCode) {
		return 0, statusError("download", resp)
	}

	// The reference backend answers a missing file with 200 and {"error": ...}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, fmt.Errorf("failed to read response: %w", err)
		}
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" && isErrorOnly(data) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		n, err := w.Write(data)
		return int64(n), err
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

// HealthCheck verifies that the backend is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.ListFiles(ctx); err != nil {
		return fmt.Errorf("backend is unreachable at %s: %w", c.baseURL, err)
	}
	return nil
}

// isErrorOnly reports whether a JSON object has exactly one key, "error"
func isErrorOnly(data []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	_, ok := fields["error"]
	return ok && len(fields) == 1
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
