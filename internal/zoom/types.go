package zoom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Recording file states reported by Zoom. Only completed files can be downloaded.
const (
	StatusCompleted  = "completed"
	StatusProcessing = "processing"
)

// MeetingID is a Zoom meeting number. The API sends it as a JSON number,
// folder maps and URLs use its decimal string form.
type MeetingID string

// UnmarshalJSON accepts both numeric and string ids.
func (id *MeetingID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = MeetingID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid meeting id %s: %w", data, err)
	}
	*id = MeetingID(n.String())
	return nil
}

// String returns the id as a string.
func (id MeetingID) String() string {
	return string(id)
}

// Meeting is one recorded meeting instance.
type Meeting struct {
	ID             MeetingID       `json:"id"`
	UUID           string          `json:"uuid"`
	Topic          string          `json:"topic"`
	StartTime      time.Time       `json:"start_time"`
	Timezone       string          `json:"timezone"`
	RecordingFiles []RecordingFile `json:"recording_files"`
}

// RecordingFile is a single media asset (video, audio, chat, ...) of a meeting.
type RecordingFile struct {
	ID             string    `json:"id"`
	MeetingID      string    `json:"meeting_id,omitempty"`
	RecordingStart time.Time `json:"recording_start"`
	RecordingEnd   time.Time `json:"recording_end"`
	FileType       string    `json:"file_type"`
	FileExtension  string    `json:"file_extension,omitempty"`
	FileSize       int64     `json:"file_size"`
	DownloadURL    string    `json:"download_url"`
	RecordingType  string    `json:"recording_type,omitempty"`
	Status         string    `json:"status"`
}

// File is a downloadable recording file together with its local destination.
type File struct {
	UUID      string        `json:"uuid"`
	ID        MeetingID     `json:"id"`
	Name      string        `json:"name"`
	Dir       string        `json:"dir"`
	Path      string        `json:"path"`
	URL       string        `json:"url"`
	Size      int64         `json:"size"`
	Recording RecordingFile `json:"recording"`
	Date      string        `json:"date"`
	Topic     string        `json:"topic"`
}

// GroupKey identifies the meeting/day a file belongs to.
func (f File) GroupKey() string {
	return f.ID.String() + "." + f.Date
}

// listRecordingsResponse is one page of GET /users/{userId}/recordings.
type listRecordingsResponse struct {
	From          string    `json:"from"`
	To            string    `json:"to"`
	PageSize      int       `json:"page_size"`
	TotalRecords  int       `json:"total_records"`
	NextPageToken string    `json:"next_page_token"`
	Meetings      []Meeting `json:"meetings"`
}
