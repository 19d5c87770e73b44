package rclone

import (
	"errors"
	"fmt"
)

// ErrNoRemotes is returned by Sync when rclone has no remote configured.
var ErrNoRemotes = errors.New("no rclone remotes found")

// Error represents a failed rclone invocation
type Error struct {
	// Op is the operation that failed (e.g., "config", "listremotes")
	Op string

	// Stderr is what rclone printed before failing
	Stderr string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("rclone %s: %v (stderr: %s)", e.Op, e.Err, e.Stderr)
	}
	return fmt.Sprintf("rclone %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// CopyError is a per-file copy failure. It does not stop a sync.
type CopyError struct {
	// Source is the local file
	Source string

	// Dest is the remote destination
	Dest string

	// ExitCode is rclone's exit status, -1 if it did not run
	ExitCode int

	// Stderr is what rclone printed before failing
	Stderr string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *CopyError) Error() string {
	return fmt.Sprintf("rclone copy %s to %s failed with exit code %d: %v", e.Source, e.Dest, e.ExitCode, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *CopyError) Unwrap() error {
	return e.Err
}
