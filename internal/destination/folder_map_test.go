package destination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/zoomsync/internal/zoom"
)

func TestParseFolderMap(t *testing.T) {
	raw := `{"m1": "F1", "default": "F0", "m3": false}`

	tests := []struct {
		name  string
		input string
	}{
		{"json", raw},
		{"base64", base64.StdEncoding.EncodeToString([]byte(raw))},
		{"json with whitespace", "  " + raw + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseFolderMap(tt.input)
			require.NoError(t, err)
			assert.Equal(t, FolderMap{
				"m1":      {Value: "F1"},
				"default": {Value: "F0"},
				"m3":      {Excluded: true},
			}, m)
		})
	}
}

func TestParseFolderMap_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", base64.StdEncoding.EncodeToString([]byte("  ")), "{}"} {
		m, err := ParseFolderMap(input)
		require.NoError(t, err, "input %q", input)
		assert.Empty(t, m, "input %q", input)
		assert.NotNil(t, m, "input %q", input)
	}
}

func TestParseFolderMap_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"true value", `{"m1": true}`},
		{"numeric value", `{"m1": 42}`},
		{"not base64", "!!not-base64!!"},
		{"base64 of garbage", base64.StdEncoding.EncodeToString([]byte("[1,2"))},
		{"array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFolderMap(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestFolderMap_Resolve(t *testing.T) {
	m := FolderMap{"m1": {Value: "F1"}, DefaultKey: {Value: "F0"}}

	got, ok := m.Resolve("m1")
	assert.True(t, ok)
	assert.Equal(t, "F1", got)

	got, ok = m.Resolve("m2")
	assert.True(t, ok)
	assert.Equal(t, "F0", got, "meetings without an entry fall back to the default")

	_, ok = FolderMap{"m1": {Value: "F1"}}.Resolve("m2")
	assert.False(t, ok)

	got, ok = FolderMap{"m2": {Value: ""}, DefaultKey: {Value: "F0"}}.Resolve("m2")
	assert.True(t, ok)
	assert.Empty(t, got, "an own entry wins over the default even when empty")

	_, ok = FolderMap{DefaultKey: {Excluded: true}}.Resolve("m2")
	assert.False(t, ok, "a false default is not a destination")
}

func TestFolderMap_Excluded(t *testing.T) {
	m := FolderMap{"m2": {Excluded: true}, DefaultKey: {Excluded: true}}

	assert.True(t, m.Excluded("m2"))
	assert.False(t, m.Excluded("m3"), "a false default does not exclude other meetings")

	_, ok := m.Resolve("m2")
	assert.False(t, ok)
}

func TestFolderMap_Filter(t *testing.T) {
	files := []zoom.File{{ID: "a", Name: "1"}, {ID: "b", Name: "2"}, {ID: "a", Name: "3"}, {ID: "c", Name: "4"}}
	m := FolderMap{"b": {Excluded: true}}

	kept := m.Filter(files)

	names := make([]string, 0, len(kept))
	for _, f := range kept {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"1", "3", "4"}, names)
}

func TestFolderMap_Validate(t *testing.T) {
	files := []zoom.File{
		{ID: "111", Topic: "Standup", Size: 1000},
		{ID: "222", Topic: "Planning", Size: 3000},
	}

	err := FolderMap{}.Validate(files)

	var missing *MissingDestinationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, zoom.MeetingID("111"), missing.MeetingID)
	assert.Equal(t, "Standup", missing.Topic)
	assert.Contains(t, err.Error(), "111 (Standup)")

	assert.NoError(t, FolderMap{DefaultKey: {Value: "F0"}}.Validate(files))

	err = FolderMap{"222": {Value: ""}, DefaultKey: {Value: "F0"}}.Validate(files)
	require.True(t, errors.As(err, &missing), "an empty own entry does not fall back to the default")
	assert.Equal(t, zoom.MeetingID("222"), missing.MeetingID)
}

func TestTarget_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(FolderMap{"m1": {Value: "F1"}, "m2": {Excluded: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"m1":"F1","m2":false}`, string(data))
}

func TestResult_JSONFlattensFile(t *testing.T) {
	r := Result{
		File:     zoom.File{ID: "123", Name: "a.mp4", Size: 10, Date: "2024-01-02"},
		Response: 200,
		RemoteID: "drive-id",
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "123", got["id"])
	assert.Equal(t, "a.mp4", got["name"])
	assert.Equal(t, float64(200), got["response"])
	assert.NotContains(t, got, "error")
}

func TestSucceeded(t *testing.T) {
	results := []Result{
		{File: zoom.File{Name: "a"}, Response: 0},
		{File: zoom.File{Name: "b"}, Response: 1, Error: "exit status 1"},
		{File: zoom.File{Name: "c"}, Response: 200},
	}

	ok := Succeeded(results)
	require.Len(t, ok, 2)
	assert.Equal(t, "a", ok[0].Name)
	assert.Equal(t, "c", ok[1].Name)
	assert.False(t, results[1].OK())
}
