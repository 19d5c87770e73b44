package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/zoomsync/internal/config"
	"github.com/teemow/zoomsync/internal/destination"
	"github.com/teemow/zoomsync/internal/ghaction"
	"github.com/teemow/zoomsync/internal/pipeline"
	"github.com/teemow/zoomsync/internal/zoom"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "zoomsync.yaml")
	require.NoError(t, os.WriteFile(file, []byte(strings.Join([]string{
		"zoom_account_id: file-account",
		"zoom_client_id: file-client",
		"zoom_client_secret: file-secret",
		"zoom_user_id: file-user",
		"lookback_days: 7",
		"rclone_config: \"[remote]\\ntype = local\\n\"",
	}, "\n")), 0o600))

	cmd := newSyncCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--zoom-user-id=flag-user", "--delete-on-success"}))

	cfg, err := loadConfig(cmd.Flags(), file, envMap(map[string]string{
		"ZOOM_CLIENT_ID":       "env-client",
		"INPUT_LOOKBACK-DAYS":  "3",
		"INPUT_ZOOM_USER_ID":   "env-user",
		"UNRELATED_DEBUG_FLAG": "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "file-account", cfg.ZoomAccountID, "file only")
	assert.Equal(t, "env-client", cfg.ZoomClientID, "env beats file")
	assert.Equal(t, 3, cfg.LookbackDays, "action input beats file")
	assert.Equal(t, "flag-user", cfg.ZoomUserID, "flag beats env")
	assert.True(t, cfg.DeleteOnSuccess)
	assert.Equal(t, config.DeleteActionTrash, cfg.DeleteAction, "unchanged flag defaults do not override")
}

func TestLoadConfig_ConfigFileFromEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "zoomsync.yaml")
	require.NoError(t, os.WriteFile(file, []byte("zoom_account_id: from-file\n"), 0o600))

	cmd := newSyncCmd()
	require.NoError(t, cmd.Flags().Parse(nil))

	cfg, err := loadConfig(cmd.Flags(), "", envMap(map[string]string{
		"ZOOMSYNC_CONFIG":    file,
		"ZOOM_CLIENT_ID":     "c",
		"ZOOM_CLIENT_SECRET": "s",
		"DRIVE_CREDENTIALS":  "e30=",
	}))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ZoomAccountID)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cmd := newSyncCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--delete-action=shred"}))

	_, err := loadConfig(cmd.Flags(), "", envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zoom-account-id is required")
	assert.Contains(t, err.Error(), "delete-action")
	assert.Contains(t, err.Error(), "either drive-credentials or rclone-config is required")
}

func TestSyncFlags_CoverAllInputs(t *testing.T) {
	cmd := newSyncCmd()
	for _, name := range config.Inputs() {
		f := cmd.Flags().Lookup(name)
		require.NotNil(t, f, "missing flag for input %s", name)
		assert.Contains(t, f.Usage, "env var", name)
		assert.NotEmpty(t, inputUsage[name], name)
	}
}

func TestWriteRecordings(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "recordings.json")
	ghOutput := filepath.Join(dir, "github_output")

	var stdout bytes.Buffer
	gha := ghaction.New(&stdout, ghOutput, true)

	file := zoom.File{
		ID:   "123",
		UUID: "uuid-1",
		Name: "10-00-00 GMT+0000 (UTC) - Audio Only.m4a",
		Path: "downloads/123/2024-01-02/10-00-00 GMT+0000 (UTC) - Audio Only.m4a",
		Size: 42,
	}
	summary := &pipeline.Summary{
		Files:   []zoom.File{file},
		Results: []destination.Result{{File: file, Response: 200, RemoteID: "drive-file-1"}},
	}
	require.NoError(t, writeRecordings(summary.Recordings(), output, gha))

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "123", decoded[0]["id"])
	assert.Equal(t, true, decoded[0]["replicated"])
	assert.Equal(t, float64(200), decoded[0]["response"])
	assert.Equal(t, "drive-file-1", decoded[0]["remote_id"])

	gh, err := os.ReadFile(ghOutput)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(gh), "recordings<<ghadelimiter_"))
	assert.Contains(t, string(gh), `"remote_id": "drive-file-1"`)
}

func TestWriteRecordings_DownloadedButNotReplicated(t *testing.T) {
	output := filepath.Join(t.TempDir(), "recordings.json")

	// a missing destination stops the run after the download with no results
	summary := &pipeline.Summary{Files: []zoom.File{
		{ID: "111", Path: "downloads/111/a.mp4"},
		{ID: "111", Path: "downloads/111/b.mp4"},
		{ID: "222", Path: "downloads/222/c.mp4"},
	}}
	require.NoError(t, writeRecordings(summary.Recordings(), output, ghaction.New(io.Discard, "", false)))

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	for i, rec := range decoded {
		assert.Equal(t, false, rec["replicated"], "recording %d", i)
		assert.NotContains(t, rec, "response")
		assert.NotContains(t, rec, "remote_id")
	}
	assert.Equal(t, "downloads/222/c.mp4", decoded[2]["path"])
}

func TestWriteRecordings_EmptyIsArray(t *testing.T) {
	output := filepath.Join(t.TempDir(), "recordings.json")
	require.NoError(t, writeRecordings(nil, output, ghaction.New(io.Discard, "", false)))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestAnnotateFailures(t *testing.T) {
	var buf bytes.Buffer
	annotateFailures(ghaction.New(&buf, "", true), []destination.Result{
		{File: zoom.File{ID: "1", Path: "/dl/a.mp4"}},
		{File: zoom.File{ID: "2", Path: "/dl/b.mp4"}, Response: 3, Error: "rclone copy failed: exit code 3"},
	})

	assert.Equal(t, "::warning::failed to replicate /dl/b.mp4 (meeting 2): rclone copy failed: exit code 3\n", buf.String())
}

func TestNewReplicator_InvalidDriveCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Destination = config.DestinationDrive
	cfg.DriveCredentials = "not base64!"

	_, err := newReplicator(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestNewReplicator_NoBackend(t *testing.T) {
	_, err := newReplicator(context.Background(), config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.EqualError(t, err, "either drive-credentials or rclone-config is required")
}

func TestEnvHint(t *testing.T) {
	assert.Equal(t, " Can also use ZOOM_CLIENT_SECRET env var.", envHint("zoom-client-secret"))
}
