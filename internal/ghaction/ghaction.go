// Package ghaction speaks the GitHub Actions runner protocol: step outputs
// written to the GITHUB_OUTPUT file and workflow commands printed to stdout.
package ghaction

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Commands writes workflow commands and step outputs for the current step.
type Commands struct {
	w          io.Writer
	outputPath string
	enabled    bool
}

// New returns Commands writing workflow commands to w and outputs to
// outputPath. Workflow commands are only printed when enabled is set.
func New(w io.Writer, outputPath string, enabled bool) *Commands {
	return &Commands{w: w, outputPath: outputPath, enabled: enabled}
}

// FromEnv configures Commands from the runner environment.
func FromEnv(w io.Writer) *Commands {
	return New(w, os.Getenv("GITHUB_OUTPUT"), os.Getenv("GITHUB_ACTIONS") == "true")
}

// Enabled reports whether the process runs inside a GitHub Actions step.
func (c *Commands) Enabled() bool {
	return c.enabled
}

// DebugEnabled reports whether step debug logging was requested for the run.
func DebugEnabled() bool {
	return os.Getenv("RUNNER_DEBUG") == "1"
}

// SetOutput appends a step output. Values may span lines. It is a no-op
// outside of a step that has an output file.
func (c *Commands) SetOutput(name, value string) error {
	if c.outputPath == "" {
		return nil
	}

	entry, err := outputEntry(name, value, "ghadelimiter_"+uuid.NewString())
	if err != nil {
		return err
	}

	f, err := os.OpenFile(c.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open GITHUB_OUTPUT: %w", err)
	}
	if _, err := f.WriteString(entry); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write output %s: %w", name, err)
	}
	return f.Close()
}

func outputEntry(name, value, delimiter string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("output name is required")
	}
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return "", fmt.Errorf("output %s contains the delimiter %s", name, delimiter)
	}
	return name + "<<" + delimiter + "\n" + value + "\n" + delimiter + "\n", nil
}

// Error prints an error annotation. Outside of Actions it does nothing.
func (c *Commands) Error(message string) {
	c.command("error", message)
}

// Warning prints a warning annotation. Outside of Actions it does nothing.
func (c *Commands) Warning(message string) {
	c.command("warning", message)
}

// minMaskLine is the shortest line of a multi-line secret that is masked on
// its own. Shorter lines such as "{" or "}" would mask unrelated log output.
const minMaskLine = 8

// AddMask hides value in all later log output of the job. Each line of a
// multi-line value that is at least minMaskLine long is masked as well.
func (c *Commands) AddMask(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	c.command("add-mask", value)
	if !strings.Contains(value, "\n") {
		return
	}
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); len(line) >= minMaskLine {
			c.command("add-mask", line)
		}
	}
}

func (c *Commands) command(name, message string) {
	if !c.enabled {
		return
	}
	_, _ = fmt.Fprintf(c.w, "::%s::%s\n", name, escapeData(message))
}

var dataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}
