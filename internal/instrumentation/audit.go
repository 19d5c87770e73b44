package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// Deletion captures a delete request against a source recording for audit
// logging. Deleting a recording cannot be undone from this tool, so every
// attempt is logged whether it succeeded or not.
type Deletion struct {
	// Recording identity
	MeetingID   string
	MeetingUUID string
	RecordingID string
	Topic       string

	// Action is "trash" or "delete"
	Action string

	// Where the file was replicated to before deletion
	Backend  string
	RemoteID string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewDeletion creates a Deletion with timing started.
// Call Complete() when the delete request returns.
func NewDeletion(meetingID, meetingUUID, recordingID, action string) *Deletion {
	return &Deletion{
		MeetingID:   meetingID,
		MeetingUUID: meetingUUID,
		RecordingID: recordingID,
		Action:      action,
		StartTime:   time.Now(),
	}
}

// WithTopic sets the meeting topic.
func (d *Deletion) WithTopic(topic string) *Deletion {
	d.Topic = topic
	return d
}

// WithReplica sets where the recording was replicated to.
func (d *Deletion) WithReplica(backend, remoteID string) *Deletion {
	d.Backend = backend
	d.RemoteID = remoteID
	return d
}

// WithSpanContext extracts trace context from the current span.
func (d *Deletion) WithSpanContext(ctx context.Context) *Deletion {
	d.TraceID = GetTraceID(ctx)
	d.SpanID = GetSpanID(ctx)
	return d
}

// Complete marks the deletion as finished and calculates duration.
func (d *Deletion) Complete(err error) *Deletion {
	d.Duration = time.Since(d.StartTime)
	d.Success = err == nil
	if err != nil {
		d.Error = err.Error()
	}
	return d
}

// Status returns "success" or "error" based on the Success field.
func (d *Deletion) Status() string {
	if d.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for the audit record. The topic is only
// included when includeTopic is set.
func (d *Deletion) LogAttrs(includeTopic bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("meeting_id", d.MeetingID),
		slog.String("meeting_uuid", d.MeetingUUID),
		slog.String("recording_id", d.RecordingID),
		slog.String("action", d.Action),
		slog.Duration("duration", d.Duration),
		slog.Bool("success", d.Success),
	}

	// Add optional fields only if present
	if includeTopic && d.Topic != "" {
		attrs = append(attrs, slog.String("topic", d.Topic))
	}
	if d.Backend != "" {
		attrs = append(attrs, slog.String("backend", d.Backend))
	}
	if d.RemoteID != "" {
		attrs = append(attrs, slog.String("remote_id", d.RemoteID))
	}
	if d.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", d.TraceID))
	}
	if d.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", d.SpanID))
	}
	if d.Error != "" {
		attrs = append(attrs, slog.String("error", d.Error))
	}

	return attrs
}

// AuditLogger provides structured audit logging for recording deletions.
type AuditLogger struct {
	logger       *slog.Logger
	includeTopic bool
	enabled      bool
}

// NewAuditLogger creates a new AuditLogger with the given configuration.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:       logger,
		includeTopic: config.IncludeTopic,
		enabled:      config.Enabled,
	}
}

// LogDeletion writes the audit record of a deletion.
func (al *AuditLogger) LogDeletion(d *Deletion) {
	if al == nil || !al.enabled {
		return
	}

	attrs := d.LogAttrs(al.includeTopic)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if d.Success {
		al.logger.Info("recording_deleted", args...)
	} else {
		al.logger.Warn("recording_delete_failed", args...)
	}
}
