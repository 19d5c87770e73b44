// Package pipeline runs one backup: authenticate against Zoom, list the
// recordings of a date range, download them, replicate them with a
// Replicator and optionally delete the replicated recordings upstream.
//
// The stages are strictly sequential. Each one is wrapped in a span and its
// duration is recorded in the stage_duration_seconds histogram.
package pipeline
