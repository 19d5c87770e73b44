package rclone

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/teemow/zoomsync/internal/logging"
)

// Binary is the rclone executable looked up on PATH.
const Binary = "rclone"

// runner executes rclone with args and returns its output.
type runner func(ctx context.Context, args ...string) (stdout, stderr string, err error)

// Client provides access to rclone remotes via the rclone CLI
type Client struct {
	run    runner
	logger *slog.Logger
}

// NewClient creates a client for the rclone binary on PATH
func NewClient(logger *slog.Logger) (*Client, error) {
	path, err := exec.LookPath(Binary)
	if err != nil {
		return nil, &Error{
			Op:  "initialize",
			Err: fmt.Errorf("rclone not found in PATH. Please install rclone: https://rclone.org/install/"),
		}
	}
	return newClient(commandRunner(path), logger), nil
}

func newClient(run runner, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		run:    run,
		logger: logging.WithService(logger, "rclone"),
	}
}

// commandRunner executes the binary at path and returns stdout, stderr, and any error
func commandRunner(path string) runner {
	return func(ctx context.Context, args ...string) (string, string, error) {
		cmd := exec.CommandContext(ctx, path, args...)

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()

		return stdout.String(), stderr.String(), err
	}
}

// DecodeConfig accepts an rclone config either verbatim or base64 encoded.
func DecodeConfig(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("rclone config is empty")
	}
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
		return raw, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("rclone config is neither an ini file nor base64: %w", err)
	}
	return string(decoded), nil
}

// Init makes sure rclone has a config file and replaces its content with config.
func (c *Client) Init(ctx context.Context, config string) error {
	if _, stderr, err := c.run(ctx, "config", "touch"); err != nil {
		c.logger.Warn("rclone config touch failed",
			logging.Operation("config"),
			slog.String("stderr", strings.TrimSpace(stderr)),
			logging.Err(err))
	}

	stdout, stderr, err := c.run(ctx, "config", "file")
	if err != nil {
		return &Error{Op: "config", Stderr: strings.TrimSpace(stderr), Err: fmt.Errorf("failed to get the rclone config file path: %w", err)}
	}

	path := lastLine(stdout)
	if path == "" {
		return &Error{Op: "config", Err: errors.New("rclone did not report a config file path")}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return &Error{Op: "config", Err: fmt.Errorf("failed to create config directory: %w", err)}
	}
	if err := renameio.WriteFile(path, []byte(config), 0o600); err != nil {
		return &Error{Op: "config", Err: fmt.Errorf("failed to write config file: %w", err)}
	}

	c.logger.Debug("wrote rclone config", logging.Operation("config"), logging.Path(path))
	return nil
}

// ListRemotes returns the configured remote names, each with its trailing colon.
func (c *Client) ListRemotes(ctx context.Context) ([]string, error) {
	stdout, stderr, err := c.run(ctx, "listremotes")
	if err != nil {
		return nil, &Error{Op: "listremotes", Stderr: strings.TrimSpace(stderr), Err: fmt.Errorf("failed to list remotes: %w", err)}
	}

	var remotes []string
	for _, line := range strings.Split(stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			remotes = append(remotes, line)
		}
	}
	return remotes, nil
}

// Copy runs "rclone copy <source> <dest> --checksum". A non-zero exit is
// reported as a *CopyError.
func (c *Client) Copy(ctx context.Context, source, dest string) error {
	_, stderr, err := c.run(ctx, "copy", source, dest, "--checksum")
	if err == nil {
		return nil
	}

	exitCode := -1
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		exitCode = coder.ExitCode()
	}
	return &CopyError{
		Source:   source,
		Dest:     dest,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Err:      err,
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
