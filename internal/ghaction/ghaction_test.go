package ghaction

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput_HeredocFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(path, []byte("existing=1\n"), 0o644))

	c := New(&bytes.Buffer{}, path, true)
	require.NoError(t, c.SetOutput("recordings", "[\n  {\"id\": \"1\"}\n]"))
	require.NoError(t, c.SetOutput("count", "1"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	re := regexp.MustCompile(`(?s)^existing=1\n` +
		`recordings<<(ghadelimiter_[0-9a-f-]{36})\n\[\n  \{"id": "1"\}\n\]\n(ghadelimiter_[0-9a-f-]{36})\n` +
		`count<<(ghadelimiter_[0-9a-f-]{36})\n1\n(ghadelimiter_[0-9a-f-]{36})\n$`)
	m := re.FindStringSubmatch(string(data))
	require.NotNil(t, m, "unexpected output file:\n%s", data)
	assert.Equal(t, m[1], m[2])
	assert.Equal(t, m[3], m[4])
	assert.NotEqual(t, m[1], m[3], "every output gets a fresh delimiter")
}

func TestSetOutput_NoOutputFile(t *testing.T) {
	c := New(&bytes.Buffer{}, "", true)
	assert.NoError(t, c.SetOutput("recordings", "[]"))
}

func TestOutputEntry_RejectsDelimiter(t *testing.T) {
	_, err := outputEntry("x", "a\nDELIM\nb", "DELIM")
	assert.Error(t, err)

	_, err = outputEntry("", "v", "DELIM")
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, "", true)

	c.Error("upload failed: 50% done\nsecond line")
	c.Warning("careful")
	c.AddMask(" s3cr3t\n")
	c.AddMask("")

	assert.Equal(t,
		"::error::upload failed: 50%25 done%0Asecond line\n"+
			"::warning::careful\n"+
			"::add-mask::s3cr3t\n",
		buf.String())
	assert.True(t, c.Enabled())
}

func TestAddMask_MultiLineSecret(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, "", true)

	c.AddMask("{\n  \"type\": \"service_account\",\n  \"private_key\": \"abc\"\n}")

	assert.Equal(t,
		"::add-mask::{%0A  \"type\": \"service_account\",%0A  \"private_key\": \"abc\"%0A}\n"+
			"::add-mask::\"type\": \"service_account\",\n"+
			"::add-mask::\"private_key\": \"abc\"\n",
		buf.String())
	assert.NotContains(t, buf.String(), "::add-mask::{\n")
	assert.NotContains(t, buf.String(), "::add-mask::}\n")
}

func TestCommands_OutsideActions(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, "", false)

	c.Error("boom")
	c.AddMask("secret")

	assert.Empty(t, buf.String())
}

func TestFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_OUTPUT", path)
	t.Setenv("RUNNER_DEBUG", "1")

	c := FromEnv(&bytes.Buffer{})
	assert.True(t, c.Enabled())
	assert.True(t, DebugEnabled())
	require.NoError(t, c.SetOutput("a", "b"))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
