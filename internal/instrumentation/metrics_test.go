package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
		DetailedLabels:  detailed,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}
	return metrics, ctx
}

func TestMetrics_RecordAll(t *testing.T) {
	for _, detailed := range []bool{false, true} {
		metrics, ctx := newTestMetrics(t, detailed)

		// Should not panic
		metrics.RecordZoomAPIRequest(ctx, OperationToken, StatusSuccess)
		metrics.RecordZoomAPIRequest(ctx, OperationList, StatusError)
		metrics.RecordDownload(ctx, StatusSuccess, 50<<20)
		metrics.RecordDownload(ctx, StatusError, 0)
		metrics.RecordReplication(ctx, "drive", StatusSuccess, "81234567890")
		metrics.RecordReplication(ctx, "rclone", StatusError, "")
		metrics.RecordDeletion(ctx, "trash", StatusSuccess)
		metrics.RecordStage(ctx, StageDownload, StatusSuccess, 3*time.Second)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	metrics := &Metrics{}
	ctx := context.Background()

	// Should not panic when instrumentation is not initialized
	metrics.RecordZoomAPIRequest(ctx, OperationList, StatusSuccess)
	metrics.RecordDownload(ctx, StatusSuccess, 1)
	metrics.RecordReplication(ctx, "drive", StatusSuccess, "1")
	metrics.RecordDeletion(ctx, "trash", StatusSuccess)
	metrics.RecordStage(ctx, StageList, StatusSuccess, time.Second)
}

func TestSizeClass(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "small"},
		{512, "small"},
		{10 << 20, "medium"},
		{700 << 20, "large"},
		{1 << 30, "huge"},
		{3 << 30, "huge"},
	}

	for _, tt := range tests {
		if got := SizeClass(tt.bytes); got != tt.want {
			t.Errorf("SizeClass(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
