package zoom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans installs a global tracer provider that keeps ended spans.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestDownloadFiles_WritesEveryFileInOrder(t *testing.T) {
	bodies := map[string]string{
		"/rec/a": strings.Repeat("a", 1000),
		"/rec/b": strings.Repeat("b", 3000),
	}
	var (
		mu    sync.Mutex
		order []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.URL.Path)
		mu.Unlock()
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	root := t.TempDir()
	files := []File{
		{ID: "1", Date: "2024-01-02", Dir: filepath.Join(root, "1", "2024-01-02"), Name: "a.mp4", URL: server.URL + "/rec/a", Size: 1000},
		{ID: "2", Date: "2024-01-02", Dir: filepath.Join(root, "2", "2024-01-02"), Name: "b.mp4", URL: server.URL + "/rec/b", Size: 3000},
	}
	for i := range files {
		files[i].Path = filepath.Join(files[i].Dir, files[i].Name)
	}

	client := New(server.Client(), testOptions(server))
	require.NoError(t, client.DownloadFiles(context.Background(), files, 4000))

	mu.Lock()
	assert.Equal(t, []string{"/rec/a", "/rec/b"}, order)
	mu.Unlock()
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		require.NoError(t, err)
		assert.Len(t, data, int(f.Size))
	}
}

func TestDownloadFiles_AbortsOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rec/missing" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid access token."}`))
			return
		}
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	root := t.TempDir()
	files := []File{
		{Dir: root, Path: filepath.Join(root, "missing.mp4"), URL: server.URL + "/rec/missing", Size: 4},
		{Dir: root, Path: filepath.Join(root, "never.mp4"), URL: server.URL + "/rec/never", Size: 4},
	}

	client := New(server.Client(), testOptions(server))
	err := client.DownloadFiles(context.Background(), files, 8)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "download", reqErr.Op)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)

	_, statErr := os.Stat(files[1].Path)
	assert.True(t, os.IsNotExist(statErr), "later files must not be downloaded")
}

func TestDownloadFile_ReportsProgressBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "nested", "dir")
	file := File{Dir: dir, Path: filepath.Join(dir, "x.mp4"), URL: server.URL + "/rec/x", Size: 2048}

	progress := &progressWriter{total: 2048, interval: 1 << 62, logger: New(nil, Options{}).logger}
	client := New(server.Client(), testOptions(server))

	n, err := client.DownloadFile(context.Background(), file, progress)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), n)
	assert.Equal(t, int64(2048), progress.done)
}

func TestDownloadFiles_KeepsPartialFileOnBrokenStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte(strings.Repeat("p", 400)))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}))
	defer server.Close()

	root := t.TempDir()
	files := []File{
		{Dir: root, Path: filepath.Join(root, "partial.mp4"), URL: server.URL + "/rec/partial", Size: 1000},
		{Dir: root, Path: filepath.Join(root, "next.mp4"), URL: server.URL + "/rec/next", Size: 1000},
	}

	client := New(server.Client(), testOptions(server))
	err := client.DownloadFiles(context.Background(), files, 2000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), files[0].Path)

	data, readErr := os.ReadFile(files[0].Path)
	require.NoError(t, readErr, "the partial file stays in place")
	assert.Equal(t, strings.Repeat("p", 400), string(data))

	_, statErr := os.Stat(files[1].Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadFile_RecordsSpan(t *testing.T) {
	recorder := recordSpans(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rec/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	dir := t.TempDir()
	client := New(server.Client(), testOptions(server))

	ok := File{ID: "111", Dir: dir, Path: filepath.Join(dir, "a.mp4"), URL: server.URL + "/rec/a", Size: 4,
		Recording: RecordingFile{ID: "rec-a"}}
	_, err := client.DownloadFile(context.Background(), ok, nil)
	require.NoError(t, err)

	gone := File{ID: "111", Dir: dir, Path: filepath.Join(dir, "b.mp4"), URL: server.URL + "/rec/gone"}
	_, err = client.DownloadFile(context.Background(), gone, nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "zoom.download", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "111", attrs["zoom.meeting_id"])
	assert.Equal(t, "rec-a", attrs["zoom.recording_id"])
	assert.Equal(t, ok.Path, attrs["file.path"])
	assert.Equal(t, int64(4), attrs["file.size"])
}
