// Package instrumentation provides OpenTelemetry instrumentation for zoomsync runs.
//
// A run is a short-lived batch job, so metrics are not scraped: they are
// gathered into a private Prometheus registry and pushed to a Pushgateway
// when the run ends. OTLP and stdout exporters are available as well.
//
// # Metrics
//
// Zoom API Metrics:
//   - zoom_api_requests_total: Counter of Zoom API requests by operation and status
//
// Recording Metrics:
//   - recording_files_total: Counter of downloaded recording files by status and size class
//   - recording_bytes_total: Counter of downloaded bytes
//   - recording_deletions_total: Counter of source recording deletions by action and status
//
// Replication Metrics:
//   - replication_files_total: Counter of replicated files by backend and status
//
// Pipeline Metrics:
//   - stage_duration_seconds: Histogram of stage durations by stage and status
//
// # Tracing
//
// Spans are created per pipeline stage (stage.<name>) and per Zoom API
// operation (zoom.<operation>).
//
// # Audit Logging
//
// Every attempt to delete a source recording is written to the audit log
// with the meeting, the recording and where it was replicated to.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: zoomsync)
//   - PROMETHEUS_PUSHGATEWAY_URL: Pushgateway to push metrics to at the end of a run
//   - PROMETHEUS_PUSH_JOB: Pushgateway job name (default: zoomsync)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	ctx, span := instrumentation.StartStageSpan(ctx, instrumentation.StageDownload)
//	err = download(ctx)
//	instrumentation.EndSpan(span, err)
//	provider.Metrics().RecordStage(ctx, instrumentation.StageDownload, status, time.Since(start))
//
//	if err := provider.Push(ctx); err != nil {
//		logger.Warn("failed to push metrics", logging.Err(err))
//	}
package instrumentation
