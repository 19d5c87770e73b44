package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/zoomsync/internal/destination"
	"github.com/teemow/zoomsync/internal/format"
	"github.com/teemow/zoomsync/internal/instrumentation"
	"github.com/teemow/zoomsync/internal/logging"
	"github.com/teemow/zoomsync/internal/zoom"
)

// Replicator copies downloaded files to a destination. Excluded meetings must
// not appear in the returned results.
type Replicator interface {
	Name() string
	Sync(ctx context.Context, files []zoom.File, totalSize int64, folderMap destination.FolderMap) ([]destination.Result, error)
}

// Options configure a run.
type Options struct {
	Credentials zoom.Credentials
	UserID      string

	// From and To bound the listing, inclusive, as YYYY-MM-DD
	From string
	To   string

	DownloadDir string
	FolderMap   destination.FolderMap
	Replicator  Replicator

	// DeleteOnSuccess deletes every successfully replicated recording file upstream
	DeleteOnSuccess bool
	DeleteAction    zoom.DeleteAction

	// Zoom tunes the API client (endpoints, pacing, transport)
	Zoom zoom.Options

	// RunID identifies the run in logs and spans (default: a random UUID)
	RunID string

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// Summary is what a run processed.
type Summary struct {
	RunID     string               `json:"run_id"`
	Files     []zoom.File          `json:"files"`
	TotalSize int64                `json:"total_size"`
	Results   []destination.Result `json:"results"`
	Deleted   int                  `json:"deleted"`
}

// Recording is a downloaded file with its replication outcome, if the file
// was handed to the replicator.
type Recording struct {
	zoom.File

	Replicated bool   `json:"replicated"`
	Response   *int   `json:"response,omitempty"`
	RemoteID   string `json:"remote_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Recordings returns every downloaded file in order, merged with its result.
// Files of excluded meetings or files a failed run never reached carry no
// outcome.
func (s *Summary) Recordings() []Recording {
	byPath := make(map[string]destination.Result, len(s.Results))
	for _, res := range s.Results {
		byPath[res.Path] = res
	}

	recordings := make([]Recording, 0, len(s.Files))
	for _, f := range s.Files {
		rec := Recording{File: f}
		if res, ok := byPath[f.Path]; ok {
			response := res.Response
			rec.Replicated = res.OK()
			rec.Response = &response
			rec.RemoteID = res.RemoteID
			rec.Error = res.Error
		}
		recordings = append(recordings, rec)
	}
	return recordings
}

// Run executes the pipeline. The returned summary is never nil and holds
// whatever was gathered before an error ended the run.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Replicator == nil {
		return nil, errors.New("a replicator is required")
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = &instrumentation.Metrics{}
	}
	logger := logging.WithRunID(opts.Logger, opts.RunID)
	opts.Zoom.Logger = logger

	r := &run{opts: opts, logger: logger, summary: &Summary{RunID: opts.RunID}}

	ctx, span := instrumentation.StartSpan(ctx, "zoomsync.run",
		instrumentation.NewSpanAttributeBuilder().
			WithRunID(opts.RunID).
			WithBackend(opts.Replicator.Name()).
			Build()...)
	err := r.execute(ctx)
	instrumentation.EndSpan(span, err)

	return r.summary, err
}

type run struct {
	opts    Options
	logger  *slog.Logger
	summary *Summary
	client  *zoom.Client
}

func (r *run) execute(ctx context.Context) error {
	var meetings []zoom.Meeting

	err := r.stage(ctx, instrumentation.StageAuthenticate, func(ctx context.Context) error {
		client, err := zoom.Authenticate(ctx, r.opts.Credentials, r.opts.Zoom)
		r.opts.Metrics.RecordZoomAPIRequest(ctx, instrumentation.OperationToken, statusOf(err))
		r.client = client
		return err
	})
	if err != nil {
		return err
	}

	err = r.stage(ctx, instrumentation.StageList, func(ctx context.Context) error {
		var err error
		meetings, err = r.client.ListRecordings(ctx, r.opts.UserID, r.opts.From, r.opts.To)
		r.opts.Metrics.RecordZoomAPIRequest(ctx, instrumentation.OperationList, statusOf(err))
		return err
	})
	if err != nil {
		return err
	}

	r.summary.Files, r.summary.TotalSize = zoom.BuildFiles(meetings, r.opts.DownloadDir)
	r.logger.Info(fmt.Sprintf("found %d meetings with %d recording files (%s)",
		len(meetings), len(r.summary.Files), format.PrettyFileSize(r.summary.TotalSize)),
		logging.Operation("list"))

	err = r.stage(ctx, instrumentation.StageDownload, func(ctx context.Context) error {
		err := r.client.DownloadFiles(ctx, r.summary.Files, r.summary.TotalSize)
		r.opts.Metrics.RecordZoomAPIRequest(ctx, instrumentation.OperationDownload, statusOf(err))
		if err != nil {
			r.opts.Metrics.RecordDownload(ctx, instrumentation.StatusError, 0)
			return err
		}
		for _, file := range r.summary.Files {
			r.opts.Metrics.RecordDownload(ctx, instrumentation.StatusSuccess, file.Size)
		}
		return nil
	})
	if err != nil {
		return err
	}

	replErr := r.stage(ctx, instrumentation.StageReplicate, func(ctx context.Context) error {
		results, err := r.opts.Replicator.Sync(ctx, r.summary.Files, r.summary.TotalSize, r.opts.FolderMap)
		r.summary.Results = results
		for _, res := range results {
			status := instrumentation.StatusSuccess
			if !res.OK() {
				status = instrumentation.StatusError
			}
			r.opts.Metrics.RecordReplication(ctx, r.opts.Replicator.Name(), status, res.ID.String())
		}
		return err
	})

	// Files that reached their destination are deleted even when a later
	// file failed to replicate.
	if !r.opts.DeleteOnSuccess || (replErr != nil && len(destination.Succeeded(r.summary.Results)) == 0) {
		return replErr
	}
	return errors.Join(replErr, r.stage(ctx, instrumentation.StageDelete, r.deleteReplicated))
}

// deleteReplicated deletes the upstream recording of every successful result.
// A failing delete does not stop the others; all failures are returned joined.
func (r *run) deleteReplicated(ctx context.Context) error {
	logger := logging.WithOperation(r.logger, "delete")
	action := r.opts.DeleteAction
	if action == "" {
		action = zoom.DeleteActionTrash
	}

	var errs []error
	for _, res := range destination.Succeeded(r.summary.Results) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		meetingID := res.UUID
		if meetingID == "" {
			meetingID = res.ID.String()
		}

		deletion := instrumentation.NewDeletion(res.ID.String(), res.UUID, res.Recording.ID, string(action)).
			WithTopic(res.Topic).
			WithReplica(r.opts.Replicator.Name(), res.RemoteID).
			WithSpanContext(ctx)

		err := r.client.DeleteRecording(ctx, meetingID, res.Recording.ID, action)
		deletion.Complete(err)
		r.opts.Audit.LogDeletion(deletion)
		r.opts.Metrics.RecordDeletion(ctx, string(action), deletion.Status())
		r.opts.Metrics.RecordZoomAPIRequest(ctx, instrumentation.OperationDelete, deletion.Status())

		if err != nil {
			logger.Warn("failed to delete recording",
				logging.Meeting(res.ID.String()),
				logging.Path(res.Path),
				logging.Err(err))
			errs = append(errs, err)
			continue
		}
		r.summary.Deleted++
		logger.Info("deleted recording", logging.Meeting(res.ID.String()), logging.Path(res.Path))
	}
	return errors.Join(errs...)
}

// stage runs fn inside a stage span and records its duration.
func (r *run) stage(ctx context.Context, stage string, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartStageSpan(ctx, stage,
		instrumentation.NewSpanAttributeBuilder().
			WithRunID(r.opts.RunID).
			WithFileCount(len(r.summary.Files)).
			Build()...)
	start := time.Now()

	err := fn(ctx)

	r.opts.Metrics.RecordStage(ctx, stage, statusOf(err), time.Since(start))
	instrumentation.EndSpan(span, err)
	if err != nil {
		r.logger.Error("stage failed", slog.String("stage", stage), logging.Err(err))
	}
	return err
}

func statusOf(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}

// Cleanup removes the download root. A missing directory is not an error.
func Cleanup(dir string) error {
	if dir == "" {
		dir = zoom.DefaultDownloadDir
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}
