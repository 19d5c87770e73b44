package rclone

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/zoomsync/internal/destination"
	"github.com/teemow/zoomsync/internal/zoom"
)

func TestSync_ContinuesAfterFailedCopy(t *testing.T) {
	fake := &fakeRunner{
		answers: map[string]fakeAnswer{
			"listremotes": {stdout: "gdrive:\nbackup:\n"},
			"copy /dl/b.mp4 gdrive:Team/Two --checksum": {err: exitError(1), stderr: "permission denied"},
		},
	}
	files := []zoom.File{
		{ID: "1", Path: "/dl/a.mp4", Size: 1000},
		{ID: "2", Path: "/dl/b.mp4", Size: 2000},
		{ID: "3", Path: "/dl/c.mp4", Size: 3000},
	}
	fm := destination.FolderMap{"2": {Value: "Team/Two"}}

	results, err := newClient(fake.run, nil).Sync(context.Background(), files, 6000, fm)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"listremotes",
		"copy /dl/a.mp4 gdrive:/ --checksum",
		"copy /dl/b.mp4 gdrive:Team/Two --checksum",
		"copy /dl/c.mp4 gdrive:/ --checksum",
	}, fake.calls)

	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.Equal(t, 0, results[0].Response)
	assert.Equal(t, "gdrive:/", results[0].RemoteID)

	assert.False(t, results[1].OK())
	assert.Equal(t, 1, results[1].Response)
	assert.Contains(t, results[1].Error, "exit code 1")

	assert.True(t, results[2].OK())

	ok := destination.Succeeded(results)
	require.Len(t, ok, 2)
	assert.Equal(t, "/dl/a.mp4", ok[0].Path)
	assert.Equal(t, "/dl/c.mp4", ok[1].Path)
}

func TestSync_DefaultEntryAndExclusion(t *testing.T) {
	fake := &fakeRunner{answers: map[string]fakeAnswer{"listremotes": {stdout: "s3:\n"}}}
	files := []zoom.File{
		{ID: "1", Path: "/dl/a.mp4"},
		{ID: "2", Path: "/dl/b.mp4"},
	}
	fm := destination.FolderMap{"2": {Excluded: true}, destination.DefaultKey: {Value: "bucket/zoom"}}

	results, err := newClient(fake.run, nil).Sync(context.Background(), files, 0, fm)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, zoom.MeetingID("1"), results[0].ID)
	assert.Equal(t, []string{"listremotes", "copy /dl/a.mp4 s3:bucket/zoom --checksum"}, fake.calls)
}

func TestSync_NoRemotes(t *testing.T) {
	fake := &fakeRunner{answers: map[string]fakeAnswer{"listremotes": {stdout: "\n"}}}

	_, err := newClient(fake.run, nil).Sync(context.Background(), []zoom.File{{ID: "1"}}, 0, destination.FolderMap{})
	assert.ErrorIs(t, err, ErrNoRemotes)
	assert.Equal(t, []string{"listremotes"}, fake.calls)
}

func TestSync_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeRunner{
		answers: map[string]fakeAnswer{"listremotes": {stdout: "r:\n"}},
		fallback: func([]string) fakeAnswer {
			cancel()
			return fakeAnswer{err: errors.New("signal: killed")}
		},
	}
	files := []zoom.File{{ID: "1", Path: "a"}, {ID: "2", Path: "b"}}

	results, err := newClient(fake.run, nil).Sync(ctx, files, 0, destination.FolderMap{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Len(t, fake.calls, 2)
}

func TestSync_EmptyOwnEntryWinsOverDefault(t *testing.T) {
	fake := &fakeRunner{answers: map[string]fakeAnswer{"listremotes": {stdout: "s3:\n"}}}
	files := []zoom.File{{ID: "1", Path: "/dl/a.mp4"}}
	fm := destination.FolderMap{"1": {Value: ""}, destination.DefaultKey: {Value: "bucket/zoom"}}

	_, err := newClient(fake.run, nil).Sync(context.Background(), files, 0, fm)
	require.NoError(t, err)

	assert.Equal(t, []string{"listremotes", "copy /dl/a.mp4 s3: --checksum"}, fake.calls)
}

func TestSync_RecordsCopySpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	fake := &fakeRunner{answers: map[string]fakeAnswer{
		"listremotes":                        {stdout: "gdrive:\n"},
		"copy /dl/b.mp4 gdrive:/ --checksum": {err: exitError(7)},
	}}
	files := []zoom.File{
		{ID: "1", Path: "/dl/a.mp4", Size: 10, Recording: zoom.RecordingFile{ID: "rec-a"}},
		{ID: "1", Path: "/dl/b.mp4", Size: 20, Recording: zoom.RecordingFile{ID: "rec-b"}},
	}

	_, err := newClient(fake.run, nil).Sync(context.Background(), files, 30, destination.FolderMap{})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "rclone.copy", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	attrs := map[string]any{}
	for _, kv := range spans[1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "rclone", attrs["zoomsync.backend"])
	assert.Equal(t, "rec-b", attrs["zoom.recording_id"])
	assert.Equal(t, "gdrive:/", attrs["rclone.dest"])
	assert.Equal(t, int64(7), attrs["rclone.exit_code"])
}
