package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/zoomsync/internal/destination"
	"github.com/teemow/zoomsync/internal/format"
	"github.com/teemow/zoomsync/internal/instrumentation"
	"github.com/teemow/zoomsync/internal/logging"
	"github.com/teemow/zoomsync/internal/zoom"
)

// Replicator uploads downloaded recordings to Drive folders.
type Replicator struct {
	uploader Uploader
	logger   *slog.Logger
}

// NewReplicator creates a Replicator that uploads through u.
func NewReplicator(u Uploader, logger *slog.Logger) *Replicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replicator{
		uploader: u,
		logger:   logging.WithService(logger, "drive"),
	}
}

// Name identifies the backend in logs and metrics.
func (r *Replicator) Name() string {
	return "drive"
}

// Sync uploads files in order. Files of excluded meetings are skipped. Every
// remaining file must resolve to a folder, otherwise a
// *destination.MissingDestinationError is returned before anything is
// uploaded. The first folder or upload failure stops the run; the results of
// the files uploaded until then are returned with the error.
func (r *Replicator) Sync(ctx context.Context, files []zoom.File, totalSize int64, folderMap destination.FolderMap) ([]destination.Result, error) {
	logger := logging.WithOperation(r.logger, "upload")

	files = folderMap.Filter(files)
	if err := folderMap.Validate(files); err != nil {
		return nil, err
	}

	subFolders := make(map[string]string)
	results := make([]destination.Result, 0, len(files))
	var uploaded int64

	for i, file := range files {
		parent, _ := folderMap.Resolve(file.ID)

		ctx, span := instrumentation.StartSpan(ctx, "drive.upload",
			instrumentation.NewSpanAttributeBuilder().
				WithBackend(r.Name()).
				WithRecording(file.ID.String(), file.Recording.ID).
				WithFile(file.Path, file.Size).
				Build()...)

		key := file.GroupKey()
		if _, ok := subFolders[key]; !ok {
			logger.Info(fmt.Sprintf("%s of %s - Creating subfolder %q for meeting %q (%s)",
				format.ProgressBar(format.Fraction(uploaded, totalSize)), format.PrettyFileSize(totalSize),
				file.Date, file.Topic, file.ID))

			folder, err := r.uploader.CreateFolder(ctx, file.Date, parent)
			if err != nil {
				err = fmt.Errorf("failed to create folder %q for meeting %q (%s): %w", file.Date, file.Topic, file.ID, err)
				instrumentation.EndSpan(span, err)
				return results, err
			}
			subFolders[key] = folder.ID
			instrumentation.AddSpanEvent(span, "folder_created",
				attribute.String("drive.folder_id", folder.ID),
				attribute.String("drive.parent_id", parent))
		}

		logger.Info(format.ProgressLine(uploaded, totalSize, "Uploading", i+1, len(files), file.Path, file.Size))

		info, err := r.upload(ctx, file, subFolders[key])
		instrumentation.EndSpan(span, err)
		if err != nil {
			return results, err
		}

		status := info.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		uploaded += file.Size
		results = append(results, destination.Result{File: file, Response: status, RemoteID: info.ID})

		logger.Debug("uploaded file",
			logging.Meeting(file.ID.String()),
			logging.Path(file.Path),
			slog.String("drive_id", info.ID))
	}

	if uploaded > 0 {
		logger.Info(format.ProgressBar(1) + " - Upload complete. Total size: " + format.PrettyFileSize(uploaded))
	}
	return results, nil
}

func (r *Replicator) upload(ctx context.Context, file zoom.File, parent string) (*FileInfo, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	defer func() { _ = f.Close() }()

	return r.uploader.UploadFile(ctx, file.Name, parent, f)
}
