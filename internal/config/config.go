package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Destination backends.
const (
	DestinationAuto   = "auto"
	DestinationDrive  = "drive"
	DestinationRclone = "rclone"
)

// Delete actions understood by the Zoom API.
const (
	DeleteActionTrash  = "trash"
	DeleteActionDelete = "delete"
)

const (
	// DateLayout is the layout of end-date and of the listing range.
	DateLayout = "2006-01-02"

	defaultUserID       = "me"
	defaultLookbackDays = 1
	defaultDownloadDir  = "downloads"
)

// Config is the resolved set of run inputs.
type Config struct {
	ZoomAccountID    string `yaml:"zoom_account_id"`
	ZoomClientID     string `yaml:"zoom_client_id"`
	ZoomClientSecret string `yaml:"zoom_client_secret"`
	ZoomUserID       string `yaml:"zoom_user_id"`

	LookbackDays int    `yaml:"lookback_days"`
	EndDate      string `yaml:"end_date"`

	Destination      string `yaml:"destination"`
	DriveCredentials string `yaml:"drive_credentials"`
	RcloneConfig     string `yaml:"rclone_config"`
	FolderMap        string `yaml:"folder_map"`

	DeleteOnSuccess bool   `yaml:"delete_on_success"`
	DeleteAction    string `yaml:"delete_action"`

	DownloadDir string `yaml:"download_dir"`
	KeepFiles   bool   `yaml:"keep_files"`
	Output      string `yaml:"output"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		ZoomUserID:   defaultUserID,
		LookbackDays: defaultLookbackDays,
		Destination:  DestinationAuto,
		DeleteAction: DeleteActionTrash,
		DownloadDir:  defaultDownloadDir,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := cfg.decode(f); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Set assigns an input by its kebab-case name.
func (c *Config) Set(name, value string) error {
	in, ok := inputsByName[name]
	if !ok {
		return fmt.Errorf("unknown input %q", name)
	}
	if err := in.set(c, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return nil
}

// ApplyEnv overrides inputs found in the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	for _, in := range inputs {
		value, ok := LookupInput(lookup, in.name)
		if !ok {
			continue
		}
		if err := c.Set(in.name, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LookupInput finds an input in the environment by its plain name, then by
// the names GitHub Actions uses for action inputs. Empty values count as unset.
func LookupInput(lookup func(string) (string, bool), name string) (string, bool) {
	upper := strings.ToUpper(name)
	snake := strings.ReplaceAll(upper, "-", "_")

	for _, key := range []string{snake, "INPUT_" + snake, "INPUT_" + upper} {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error

	for name, value := range map[string]string{
		"zoom-account-id":    c.ZoomAccountID,
		"zoom-client-id":     c.ZoomClientID,
		"zoom-client-secret": c.ZoomClientSecret,
	} {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	if c.LookbackDays < 0 {
		errs = append(errs, fmt.Errorf("lookback-days must not be negative, got %d", c.LookbackDays))
	}
	if c.EndDate != "" {
		if _, err := time.Parse(DateLayout, c.EndDate); err != nil {
			errs = append(errs, fmt.Errorf("end-date must be YYYY-MM-DD, got %q", c.EndDate))
		}
	}

	switch c.DeleteAction {
	case DeleteActionTrash, DeleteActionDelete:
	default:
		errs = append(errs, fmt.Errorf("delete-action must be %q or %q, got %q", DeleteActionTrash, DeleteActionDelete, c.DeleteAction))
	}

	if _, err := c.Backend(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Backend resolves the destination. With "auto", Drive is chosen when Drive
// credentials are given, rclone when an rclone config is given.
func (c *Config) Backend() (string, error) {
	switch c.Destination {
	case DestinationDrive:
		if c.DriveCredentials == "" {
			return "", errors.New("destination drive requires drive-credentials")
		}
		return DestinationDrive, nil
	case DestinationRclone:
		if c.RcloneConfig == "" {
			return "", errors.New("destination rclone requires rclone-config")
		}
		return DestinationRclone, nil
	case DestinationAuto, "":
		switch {
		case c.DriveCredentials != "":
			return DestinationDrive, nil
		case c.RcloneConfig != "":
			return DestinationRclone, nil
		}
		return "", errors.New("either drive-credentials or rclone-config is required")
	default:
		return "", fmt.Errorf("destination must be one of auto, drive, rclone, got %q", c.Destination)
	}
}

// DateRange returns the listing range as YYYY-MM-DD: the end date (today in
// UTC when unset) and the day LookbackDays before it.
func (c *Config) DateRange(now time.Time) (from, to string, err error) {
	end := now.UTC()
	if c.EndDate != "" {
		end, err = time.Parse(DateLayout, c.EndDate)
		if err != nil {
			return "", "", fmt.Errorf("end-date must be YYYY-MM-DD, got %q", c.EndDate)
		}
	}

	start := end.AddDate(0, 0, -c.LookbackDays)
	return start.Format(DateLayout), end.Format(DateLayout), nil
}

// Redacted returns the configuration as YAML with secrets masked, for debug logs.
func (c Config) Redacted() string {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.ZoomClientSecret = mask(c.ZoomClientSecret)
	c.DriveCredentials = mask(c.DriveCredentials)
	c.RcloneConfig = mask(c.RcloneConfig)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err.Error()
	}
	_ = enc.Close()
	return buf.String()
}

type input struct {
	name string
	set  func(*Config, string) error
}

func stringInput(name string, field func(*Config) *string) input {
	return input{name: name, set: func(c *Config, v string) error {
		*field(c) = v
		return nil
	}}
}

func boolInput(name string, field func(*Config) *bool) input {
	return input{name: name, set: func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}}
}

func intInput(name string, field func(*Config) *int) input {
	return input{name: name, set: func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}}
}

var inputs = []input{
	stringInput("zoom-account-id", func(c *Config) *string { return &c.ZoomAccountID }),
	stringInput("zoom-client-id", func(c *Config) *string { return &c.ZoomClientID }),
	stringInput("zoom-client-secret", func(c *Config) *string { return &c.ZoomClientSecret }),
	stringInput("zoom-user-id", func(c *Config) *string { return &c.ZoomUserID }),
	intInput("lookback-days", func(c *Config) *int { return &c.LookbackDays }),
	stringInput("end-date", func(c *Config) *string { return &c.EndDate }),
	stringInput("destination", func(c *Config) *string { return &c.Destination }),
	stringInput("drive-credentials", func(c *Config) *string { return &c.DriveCredentials }),
	stringInput("rclone-config", func(c *Config) *string { return &c.RcloneConfig }),
	stringInput("folder-map", func(c *Config) *string { return &c.FolderMap }),
	boolInput("delete-on-success", func(c *Config) *bool { return &c.DeleteOnSuccess }),
	stringInput("delete-action", func(c *Config) *string { return &c.DeleteAction }),
	stringInput("download-dir", func(c *Config) *string { return &c.DownloadDir }),
	boolInput("keep-files", func(c *Config) *bool { return &c.KeepFiles }),
	stringInput("output", func(c *Config) *string { return &c.Output }),
	stringInput("log-level", func(c *Config) *string { return &c.LogLevel }),
	stringInput("log-format", func(c *Config) *string { return &c.LogFormat }),
}

var inputsByName = func() map[string]input {
	m := make(map[string]input, len(inputs))
	for _, in := range inputs {
		m[in.name] = in
	}
	return m
}()

// Inputs returns the names of all inputs in declaration order.
func Inputs() []string {
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.name
	}
	return names
}
