package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", 0)
}

// =============================================================================
// CHAT
// =============================================================================

func TestChat_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Message)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "hi [there](http://ex.com)"}`))
	})

	reply, err := client.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi [there](http://ex.com)", reply)
}

func TestChat_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)

			_, err := client.Chat(context.Background(), "hello")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrChatFailed)

			var statusErr *StatusError
			if tc.status != 0 {
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tc.status, statusErr.StatusCode)
			} else {
				assert.False(t, errors.As(err, &statusErr))
			}
		})
	}
}

func TestChat_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second)
	_, err := client.Chat(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrChatFailed)
}

func TestChat_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Chat(ctx, "hello")
	assert.ErrorIs(t, err, ErrChatFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestUpload_SendsMultipartFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/upload", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		assert.Equal(t, "report.pdf", header.Filename)
		data, err := io.ReadAll(file)
		assert.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 bytes", string(data))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"filename": header.Filename, "path": "uploads/report.pdf"})
	})

	err := client.Upload(context.Background(), "/tmp/dir/report.pdf", strings.NewReader("%PDF-1.4 bytes"))
	require.NoError(t, err)
}

func TestUpload_AcceptsAnyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	require.NoError(t, client.Upload(context.Background(), "a.txt", strings.NewReader("x")))
}

func TestUpload_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too large", http.StatusRequestEntityTooLarge)
	})

	err := client.Upload(context.Background(), "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "too large")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestUpload_ReadFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	err := client.Upload(context.Background(), "a.txt", failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUpload_StreamsLargeFile(t *testing.T) {
	content := strings.Repeat("0123456789abcdef", 1<<16)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// A streamed body has no declared length
		assert.Equal(t, int64(-1), r.ContentLength)

		file, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		assert.NoError(t, err)
		assert.Equal(t, len(content), len(data))
		assert.Equal(t, content, string(data))
	})

	require.NoError(t, client.Upload(context.Background(), "big.bin", strings.NewReader(content)))
}

// =============================================================================
// FILES & DOWNLOAD
// =============================================================================

func TestListFiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files", r.URL.Path)
		w.Write([]byte(`{"files": ["a.txt", "out.csv"]}`))
	})

	files, err := client.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "out.csv"}, files)
}

func TestListFiles_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	files, err := client.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NotNil(t, files)
}

func TestDownload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/download/my file.csv", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("a,b\n1,2\n"))
	})

	var buf bytes.Buffer
	n, err := client.Download(context.Background(), "my file.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "a,b\n1,2\n", buf.String())
}

func TestDownload_MissingFile(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"error": "File not found"}`))
			},
		},
		{
			name: "404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)

			var buf bytes.Buffer
			_, err := client.Download(context.Background(), "nope.txt", &buf)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestDownload_JSONFileIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "x", "count": 2}`))
	})

	var buf bytes.Buffer
	_, err := client.Download(context.Background(), "data.json", &buf)
	require.NoError(t, err)
	assert.Equal(t, `{"error": "x", "count": 2}`, buf.String())
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"files": []}`))
	})
	assert.NoError(t, client.HealthCheck(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := down.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://localhost:8000/", 0)
	assert.Equal(t, "http://localhost:8000", client.BaseURL())
}
