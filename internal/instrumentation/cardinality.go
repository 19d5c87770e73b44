package instrumentation

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// A Pushgateway keeps every series it was ever sent until it is deleted, so
// per-meeting labels accumulate across runs. Only attach them with
// DetailedLabels enabled.

// SizeClass buckets a file size into a handful of label values.
//
// Example:
//
//	SizeClass(512)             // "small"
//	SizeClass(50 << 20)        // "medium"
//	SizeClass(700 << 20)       // "large"
//	SizeClass(3 << 30)         // "huge"
func SizeClass(bytes int64) string {
	switch {
	case bytes < 10<<20:
		return "small"
	case bytes < 100<<20:
		return "medium"
	case bytes < 1<<30:
		return "large"
	default:
		return "huge"
	}
}

// Operation types for Zoom API metrics.
// Status and stage constants are defined in config.go.
const (
	OperationToken    = "token"
	OperationList     = "list"
	OperationDownload = "download"
	OperationDelete   = "delete"
)
