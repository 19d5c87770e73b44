package rclone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/zoomsync/internal/destination"
	"github.com/teemow/zoomsync/internal/format"
	"github.com/teemow/zoomsync/internal/instrumentation"
	"github.com/teemow/zoomsync/internal/logging"
	"github.com/teemow/zoomsync/internal/zoom"
)

// DefaultPath is the remote path used when the folder map has no entry.
const DefaultPath = "/"

// Name identifies the backend in logs and metrics.
func (c *Client) Name() string {
	return "rclone"
}

// Sync copies files to the first configured remote, in order. Files of
// excluded meetings are skipped. A failed copy is logged and recorded with
// its exit code and the next file is copied; only a cancelled context stops
// the loop early.
func (c *Client) Sync(ctx context.Context, files []zoom.File, totalSize int64, folderMap destination.FolderMap) ([]destination.Result, error) {
	logger := logging.WithOperation(c.logger, "upload")

	remotes, err := c.ListRemotes(ctx)
	if err != nil {
		return nil, err
	}
	if len(remotes) == 0 {
		return nil, ErrNoRemotes
	}
	remote := remotes[0]
	if len(remotes) > 1 {
		logger.Warn("multiple rclone remotes configured, using the first one", slog.String("remote", remote))
	}

	files = folderMap.Filter(files)
	results := make([]destination.Result, 0, len(files))
	var processed, uploaded int64

	for i, file := range files {
		folder, ok := folderMap.Resolve(file.ID)
		if !ok {
			folder = DefaultPath
		}
		dest := remote + folder

		logger.Info(format.ProgressLine(processed, totalSize, "Uploading", i+1, len(files), file.Path, file.Size))

		result := destination.Result{File: file, RemoteID: dest}
		err := c.copyFile(ctx, file, dest)
		processed += file.Size

		var copyErr *CopyError
		switch {
		case err == nil:
			uploaded += file.Size
		case ctx.Err() != nil:
			return results, ctx.Err()
		case errors.As(err, &copyErr):
			result.Response = copyErr.ExitCode
			result.Error = err.Error()
			logger.Error(fmt.Sprintf("Failed to upload %s", file.Path),
				logging.Meeting(file.ID.String()),
				slog.Int("exit_code", copyErr.ExitCode),
				slog.String("stderr", copyErr.Stderr),
				logging.Err(err))
		default:
			return results, err
		}
		results = append(results, result)
	}

	logger.Info(format.ProgressBar(1) + " - Upload complete. Total size: " + format.PrettyFileSize(uploaded))
	return results, nil
}

func (c *Client) copyFile(ctx context.Context, file zoom.File, dest string) error {
	ctx, span := instrumentation.StartSpan(ctx, "rclone.copy",
		instrumentation.NewSpanAttributeBuilder().
			WithBackend(c.Name()).
			WithRecording(file.ID.String(), file.Recording.ID).
			WithFile(file.Path, file.Size).
			Build()...)

	span.SetAttributes(attribute.String("rclone.dest", dest))
	err := c.Copy(ctx, file.Path, dest)

	var copyErr *CopyError
	if errors.As(err, &copyErr) {
		span.SetAttributes(attribute.Int("rclone.exit_code", copyErr.ExitCode))
	}
	instrumentation.EndSpan(span, err)
	return err
}
