package zoom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/teemow/zoomsync/internal/format"
	"github.com/teemow/zoomsync/internal/instrumentation"
	"github.com/teemow/zoomsync/internal/logging"
)

// DownloadFiles streams every file to its Path, one after the other, creating
// directories as needed. The first failure aborts the remaining downloads;
// partially written files are left on disk.
func (c *Client) DownloadFiles(ctx context.Context, files []File, totalSize int64) error {
	logger := logging.WithOperation(c.logger, "download")
	logger.Info(fmt.Sprintf("%d files (%s) queued for download", len(files), format.PrettyFileSize(totalSize)))

	progress := &progressWriter{
		total:    totalSize,
		interval: c.progressInterval,
		logger:   logger,
	}

	for i, file := range files {
		logger.Info(format.ProgressLine(progress.done, totalSize, "Downloading", i+1, len(files), file.Path, file.Size))
		progress.index, progress.count, progress.file = i+1, len(files), file

		if _, err := c.DownloadFile(ctx, file, progress); err != nil {
			return err
		}
	}

	if totalSize > 0 {
		logger.Info(format.ProgressBar(1) + " - Download complete. Total size: " + format.PrettyFileSize(totalSize))
	}
	return nil
}

// DownloadFile streams a single file to file.Path. Bytes are also written to
// progress when it is not nil. It returns the number of bytes written.
func (c *Client) DownloadFile(ctx context.Context, file File, progress io.Writer) (int64, error) {
	ctx, span := instrumentation.StartZoomAPISpan(ctx, instrumentation.OperationDownload,
		instrumentation.NewSpanAttributeBuilder().
			WithRecording(file.ID.String(), file.Recording.ID).
			WithFile(file.Path, file.Size).
			Build()...)
	n, err := c.downloadFile(ctx, file, progress)
	instrumentation.EndSpan(span, err)
	return n, err
}

func (c *Client) downloadFile(ctx context.Context, file File, progress io.Writer) (int64, error) {
	if err := os.MkdirAll(file.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory %s: %w", file.Dir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build download request for %s: %w", file.Path, err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", file.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &RequestError{
			Op:         "download",
			Target:     file.Path,
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := os.Create(file.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", file.Path, err)
	}

	var w io.Writer = out
	if progress != nil {
		w = io.MultiWriter(out, progress)
	}

	n, err := io.Copy(w, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", file.Path, err)
	}
	return n, nil
}

// progressWriter counts streamed bytes and logs a progress line at most once per interval.
type progressWriter struct {
	total    int64
	done     int64
	interval time.Duration
	last     time.Time
	logger   *slog.Logger

	index, count int
	file         File
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if now := time.Now(); now.Sub(p.last) >= p.interval {
		if !p.last.IsZero() {
			p.logger.Info(format.ProgressLine(p.done, p.total, "Downloading", p.index, p.count, p.file.Path, p.file.Size))
		}
		p.last = now
	}
	return len(b), nil
}
