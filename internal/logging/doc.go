// Package logging provides structured logging utilities for zoomsync.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction from the CLI flags (level and text/json format)
//   - Consistent attribute naming across the codebase
//   - Token masking so credentials never reach the CI log
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithService(slog.Default(), "zoom")
//	logger.Info("listing recordings",
//	    logging.Operation("list"),
//	    logging.Meeting("81234567890"))
//
// Attach errors safely, even when they may be nil:
//
//	logger.Warn("delete failed", logging.Err(err))
package logging
