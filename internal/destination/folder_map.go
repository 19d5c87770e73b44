package destination

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/zoomsync/internal/zoom"
)

// DefaultKey is the folder map entry used for meetings without their own entry.
const DefaultKey = "default"

// Target is a folder map value: a destination, or an exclusion marker.
type Target struct {
	Value    string
	Excluded bool
}

// UnmarshalJSON accepts a string or false.
func (t *Target) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("false")):
		*t = Target{Excluded: true}
		return nil
	case bytes.Equal(data, []byte("true")):
		return errors.New("folder map values must be a string or false, got true")
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("folder map values must be a string or false, got %s", data)
	}
	*t = Target{Value: s}
	return nil
}

// MarshalJSON renders the target back into its folder map form.
func (t Target) MarshalJSON() ([]byte, error) {
	if t.Excluded {
		return []byte("false"), nil
	}
	return json.Marshal(t.Value)
}

// FolderMap routes meeting ids to destinations.
type FolderMap map[string]Target

// ParseFolderMap decodes a folder map given either as a JSON object or as
// base64 encoded JSON. An empty input yields an empty map.
func ParseFolderMap(raw string) (FolderMap, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FolderMap{}, nil
	}

	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("folder map is neither JSON nor base64: %w", err)
		}
		data = bytes.TrimSpace(decoded)
		if len(data) == 0 {
			return FolderMap{}, nil
		}
	}

	var m FolderMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse folder map: %w", err)
	}
	if m == nil {
		m = FolderMap{}
	}
	return m, nil
}

// Excluded reports whether the meeting is mapped to false. The default entry
// never excludes a meeting.
func (m FolderMap) Excluded(id zoom.MeetingID) bool {
	t, ok := m[id.String()]
	return ok && t.Excluded
}

// Resolve returns the meeting's own entry if it has one, otherwise the
// default entry. An own entry wins even when it is empty. ok is false when
// neither entry names a destination.
func (m FolderMap) Resolve(id zoom.MeetingID) (string, bool) {
	if t, found := m[id.String()]; found {
		return t.Value, !t.Excluded
	}
	if t, found := m[DefaultKey]; found && !t.Excluded {
		return t.Value, true
	}
	return "", false
}

// Filter drops the files of excluded meetings, keeping order.
func (m FolderMap) Filter(files []zoom.File) []zoom.File {
	kept := make([]zoom.File, 0, len(files))
	for _, f := range files {
		if !m.Excluded(f.ID) {
			kept = append(kept, f)
		}
	}
	return kept
}
