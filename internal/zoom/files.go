package zoom

import (
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/teemow/zoomsync/internal/format"
)

// DefaultDownloadDir is where recordings are materialized before replication.
const DefaultDownloadDir = "downloads"

const (
	dateLayout = "2006-01-02"

	// Example: "10-00-00 GMT-0700 (PDT)"
	timestampLayout = "15-04-05 GMT-0700 (MST)"
)

var unsafeNameChars = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
)

// BuildFiles flattens meetings into the list of files to download, in
// meeting order then recording order, and returns their total size. Files
// that are not completed yet are skipped.
func BuildFiles(meetings []Meeting, root string) ([]File, int64) {
	if root == "" {
		root = DefaultDownloadDir
	}

	var files []File
	var total int64
	for _, meeting := range meetings {
		date := MeetingDate(meeting)
		dir := filepath.Join(root, meeting.ID.String(), date)

		for _, rec := range meeting.RecordingFiles {
			if rec.Status != StatusCompleted {
				continue
			}

			name := FileName(rec, meeting)
			files = append(files, File{
				UUID:      meeting.UUID,
				ID:        meeting.ID,
				Name:      name,
				Dir:       dir,
				Path:      filepath.Join(dir, name),
				URL:       rec.DownloadURL,
				Size:      rec.FileSize,
				Recording: rec,
				Date:      date,
				Topic:     meeting.Topic,
			})
			total += rec.FileSize
		}
	}

	return files, total
}

// MeetingDate is the calendar day the meeting started on, in the meeting's timezone.
func MeetingDate(m Meeting) string {
	return m.StartTime.In(location(m.Timezone)).Format(dateLayout)
}

// FileName builds "<start time> - <Recording Type>.<ext>" for a recording file,
// with the start time rendered in the meeting's timezone.
func FileName(rec RecordingFile, m Meeting) string {
	timestamp := rec.RecordingStart.In(location(m.Timezone)).Format(timestampLayout)

	recType := rec.RecordingType
	if recType == "" {
		recType = strings.ToLower(rec.FileType)
	}

	ext := rec.FileExtension
	if ext == "" {
		ext = rec.FileType
	}

	name := timestamp + " - " + format.TitleCase(recType) + "." + strings.ToLower(ext)
	return unsafeNameChars.Replace(name)
}

// location resolves an IANA timezone name, falling back to UTC.
func location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
