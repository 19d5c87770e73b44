package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrStage     = "stage"
	attrBackend   = "backend"
	attrSize      = "size_class"
	attrMeeting   = "meeting_id"
	attrAction    = "action"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Zoom API metrics
	zoomAPIRequestsTotal metric.Int64Counter

	// Recording metrics
	recordingFilesTotal     metric.Int64Counter
	recordingBytesTotal     metric.Int64Counter
	recordingDeletionsTotal metric.Int64Counter

	// Replication metrics
	replicationFilesTotal metric.Int64Counter

	// Stage metrics
	stageDuration metric.Float64Histogram

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.zoomAPIRequestsTotal, err = meter.Int64Counter(
		"zoom_api_requests_total",
		metric.WithDescription("Total number of Zoom API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zoom_api_requests_total counter: %w", err)
	}

	m.recordingFilesTotal, err = meter.Int64Counter(
		"recording_files_total",
		metric.WithDescription("Total number of recording files downloaded"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording_files_total counter: %w", err)
	}

	m.recordingBytesTotal, err = meter.Int64Counter(
		"recording_bytes_total",
		metric.WithDescription("Total number of recording bytes downloaded"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording_bytes_total counter: %w", err)
	}

	m.replicationFilesTotal, err = meter.Int64Counter(
		"replication_files_total",
		metric.WithDescription("Total number of files replicated by backend and status"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create replication_files_total counter: %w", err)
	}

	m.recordingDeletionsTotal, err = meter.Int64Counter(
		"recording_deletions_total",
		metric.WithDescription("Total number of source recordings deleted after replication"),
		metric.WithUnit("{recording}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording_deletions_total counter: %w", err)
	}

	m.stageDuration, err = meter.Float64Histogram(
		"stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800, 3600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordZoomAPIRequest records a Zoom API call.
//
// Parameters:
//   - operation: token, list, download or delete
//   - status: Result status ("success" or "error")
func (m *Metrics) RecordZoomAPIRequest(ctx context.Context, operation, status string) {
	if m.zoomAPIRequestsTotal == nil {
		return // Instrumentation not initialized
	}

	m.zoomAPIRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	))
}

// RecordDownload records one downloaded recording file and its size.
func (m *Metrics) RecordDownload(ctx context.Context, status string, bytes int64) {
	if m.recordingFilesTotal == nil || m.recordingBytesTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := metric.WithAttributes(
		attribute.String(attrStatus, status),
		attribute.String(attrSize, SizeClass(bytes)),
	)
	m.recordingFilesTotal.Add(ctx, 1, attrs)
	if bytes > 0 {
		m.recordingBytesTotal.Add(ctx, bytes, metric.WithAttributes(attribute.String(attrStatus, status)))
	}
}

// RecordReplication records the outcome of replicating one file.
// The meeting id is only attached when detailed labels are enabled.
func (m *Metrics) RecordReplication(ctx context.Context, backend, status, meetingID string) {
	if m.replicationFilesTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrBackend, backend),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && meetingID != "" {
		attrs = append(attrs, attribute.String(attrMeeting, meetingID))
	}

	m.replicationFilesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDeletion records a delete request against a source recording.
func (m *Metrics) RecordDeletion(ctx context.Context, action, status string) {
	if m.recordingDeletionsTotal == nil {
		return // Instrumentation not initialized
	}

	m.recordingDeletionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAction, action),
		attribute.String(attrStatus, status),
	))
}

// RecordStage records how long a pipeline stage took and how it ended.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m.stageDuration == nil {
		return // Instrumentation not initialized
	}

	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(attrStage, stage),
		attribute.String(attrStatus, status),
	))
}
