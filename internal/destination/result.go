package destination

import (
	"fmt"

	"github.com/teemow/zoomsync/internal/zoom"
)

// Result is the replication outcome of one file.
type Result struct {
	zoom.File

	// Response is the HTTP status of the upload for Drive. For rclone it is
	// the exit code of the copy: 0 on success, -1 when rclone could not be
	// run. Use OK to test for success.
	Response int `json:"response"`

	// RemoteID is the Drive file id or the rclone destination path.
	RemoteID string `json:"remote_id,omitempty"`

	// Error describes a failed transfer. Empty on success.
	Error string `json:"error,omitempty"`
}

// OK reports whether the file reached its destination.
func (r Result) OK() bool {
	return r.Error == ""
}

// Succeeded returns the results that reached their destination.
func Succeeded(results []Result) []Result {
	var ok []Result
	for _, r := range results {
		if r.OK() {
			ok = append(ok, r)
		}
	}
	return ok
}

// MissingDestinationError is returned before any transfer when a meeting
// resolves to no destination and the folder map has no default.
type MissingDestinationError struct {
	MeetingID zoom.MeetingID
	Topic     string
}

func (e *MissingDestinationError) Error() string {
	return fmt.Sprintf("no folder found for meeting %s (%s) nor a default folder provided", e.MeetingID, e.Topic)
}

// Validate checks that every file resolves to a non-empty destination.
func (m FolderMap) Validate(files []zoom.File) error {
	for _, f := range files {
		if dest, ok := m.Resolve(f.ID); !ok || dest == "" {
			return &MissingDestinationError{MeetingID: f.ID, Topic: f.Topic}
		}
	}
	return nil
}
