package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teemow/zoomsync/internal/config"
	"github.com/teemow/zoomsync/internal/destination"
	"github.com/teemow/zoomsync/internal/drive"
	"github.com/teemow/zoomsync/internal/ghaction"
	"github.com/teemow/zoomsync/internal/google"
	"github.com/teemow/zoomsync/internal/instrumentation"
	"github.com/teemow/zoomsync/internal/logging"
	"github.com/teemow/zoomsync/internal/pipeline"
	"github.com/teemow/zoomsync/internal/rclone"
	"github.com/teemow/zoomsync/internal/zoom"
)

// RecordingsOutput is the name of the step output holding the recordings.
const RecordingsOutput = "recordings"

const shutdownTimeout = 10 * time.Second

// inputUsage describes every config input. The env var hint is appended by envHint.
var inputUsage = map[string]string{
	"zoom-account-id":    "Zoom server-to-server OAuth account ID",
	"zoom-client-id":     "Zoom server-to-server OAuth client ID",
	"zoom-client-secret": "Zoom server-to-server OAuth client secret",
	"zoom-user-id":       "Zoom user whose recordings are backed up",
	"lookback-days":      "Number of days before end-date to list recordings for",
	"end-date":           "Last day of the listing range as YYYY-MM-DD (default: today in UTC)",
	"destination":        "Replication backend: auto, drive or rclone",
	"drive-credentials":  "Google service account key, as JSON or base64 encoded JSON",
	"rclone-config":      "rclone configuration, as an ini file or base64 encoded",
	"folder-map":         `Meeting ID to Drive folder ID or rclone path, as JSON or base64 encoded JSON. Use "default" as a fallback key and false to skip a meeting`,
	"delete-on-success":  "Delete recordings from Zoom after they were replicated",
	"delete-action":      "How recordings are deleted: trash or delete",
	"download-dir":       "Directory the recordings are downloaded to",
	"keep-files":         "Keep the downloaded files after the run",
	"output":             "File the JSON recordings are written to",
	"log-level":          "Log level: debug, info, warn or error",
	"log-format":         "Log format: text or json",
}

func envHint(name string) string {
	return fmt.Sprintf(" Can also use %s env var.", strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
}

func newSyncCmd() *cobra.Command {
	var (
		configFile string
		debugMode  bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download Zoom recordings and replicate them",
		Long: `Authenticate against Zoom, list the cloud recordings of the date range,
download them and copy them to Google Drive or to an rclone remote.

Inputs are resolved in this order:
  1. command line flags
  2. environment variables (ZOOM_ACCOUNT_ID, INPUT_ZOOM_ACCOUNT_ID or INPUT_ZOOM-ACCOUNT-ID)
  3. the YAML file given with --config
  4. defaults

Destinations are picked per meeting from the folder map:
  {"123456789": "<drive folder id or rclone path>", "987654321": false, "default": "..."}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gha := ghaction.FromEnv(cmd.OutOrStdout())
			err := runSync(cmd.Context(), cmd.Flags(), configFile, debugMode, cmd.ErrOrStderr(), gha)
			if err != nil {
				gha.Error(err.Error())
			}
			return err
		},
	}

	defaults := config.Default()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "Path to a YAML configuration file. Can also use ZOOMSYNC_CONFIG env var.")
	f.BoolVar(&debugMode, "debug", false, "Enable debug logging. Also enabled by RUNNER_DEBUG=1.")

	f.String("zoom-account-id", "", inputUsage["zoom-account-id"]+"."+envHint("zoom-account-id"))
	f.String("zoom-client-id", "", inputUsage["zoom-client-id"]+"."+envHint("zoom-client-id"))
	f.String("zoom-client-secret", "", inputUsage["zoom-client-secret"]+"."+envHint("zoom-client-secret"))
	f.String("zoom-user-id", defaults.ZoomUserID, inputUsage["zoom-user-id"]+"."+envHint("zoom-user-id"))
	f.Int("lookback-days", defaults.LookbackDays, inputUsage["lookback-days"]+"."+envHint("lookback-days"))
	f.String("end-date", "", inputUsage["end-date"]+"."+envHint("end-date"))
	f.String("destination", defaults.Destination, inputUsage["destination"]+"."+envHint("destination"))
	f.String("drive-credentials", "", inputUsage["drive-credentials"]+"."+envHint("drive-credentials"))
	f.String("rclone-config", "", inputUsage["rclone-config"]+"."+envHint("rclone-config"))
	f.String("folder-map", "", inputUsage["folder-map"]+"."+envHint("folder-map"))
	f.Bool("delete-on-success", false, inputUsage["delete-on-success"]+"."+envHint("delete-on-success"))
	f.String("delete-action", defaults.DeleteAction, inputUsage["delete-action"]+"."+envHint("delete-action"))
	f.String("download-dir", defaults.DownloadDir, inputUsage["download-dir"]+"."+envHint("download-dir"))
	f.Bool("keep-files", false, inputUsage["keep-files"]+"."+envHint("keep-files"))
	f.String("output", "", inputUsage["output"]+"."+envHint("output"))
	f.String("log-level", defaults.LogLevel, inputUsage["log-level"]+"."+envHint("log-level"))
	f.String("log-format", defaults.LogFormat, inputUsage["log-format"]+"."+envHint("log-format"))

	return cmd
}

// loadConfig resolves the inputs: defaults, then the YAML file, then the
// environment, then the flags set on the command line.
func loadConfig(flags *pflag.FlagSet, configFile string, lookup func(string) (string, bool)) (config.Config, error) {
	if configFile == "" {
		configFile, _ = lookup("ZOOMSYNC_CONFIG")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}

	known := make(map[string]bool)
	for _, name := range config.Inputs() {
		known[name] = true
	}

	var errs []error
	flags.Visit(func(f *pflag.Flag) {
		if known[f.Name] {
			errs = append(errs, cfg.Set(f.Name, f.Value.String()))
		}
	})
	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func runSync(ctx context.Context, flags *pflag.FlagSet, configFile string, debugMode bool, logOut io.Writer, gha *ghaction.Commands) error {
	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(flags, configFile, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gha.AddMask(cfg.ZoomClientSecret)
	gha.AddMask(cfg.DriveCredentials)
	gha.AddMask(cfg.RcloneConfig)

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if debugMode || ghaction.DebugEnabled() {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(logOut, level, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Debug("resolved configuration\n" + cfg.Redacted())

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if err := instrConfig.Validate(); err != nil {
		return fmt.Errorf("invalid instrumentation configuration: %w", err)
	}

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Push(shutdownCtx); err != nil {
			logger.Warn("failed to push metrics", logging.Err(err))
		}
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	folderMap, err := destination.ParseFolderMap(cfg.FolderMap)
	if err != nil {
		return err
	}

	from, to, err := cfg.DateRange(time.Now())
	if err != nil {
		return err
	}

	replicator, err := newReplicator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if !cfg.KeepFiles {
		defer func() {
			if err := pipeline.Cleanup(cfg.DownloadDir); err != nil {
				logger.Warn("failed to clean up downloads", logging.Err(err))
			}
		}()
	}

	summary, runErr := pipeline.Run(ctx, pipeline.Options{
		Credentials: zoom.Credentials{
			AccountID:    cfg.ZoomAccountID,
			ClientID:     cfg.ZoomClientID,
			ClientSecret: cfg.ZoomClientSecret,
		},
		UserID:          cfg.ZoomUserID,
		From:            from,
		To:              to,
		DownloadDir:     cfg.DownloadDir,
		FolderMap:       folderMap,
		Replicator:      replicator,
		DeleteOnSuccess: cfg.DeleteOnSuccess,
		DeleteAction:    zoom.DeleteAction(cfg.DeleteAction),
		RunID:           os.Getenv("GITHUB_RUN_ID"),
		Logger:          logger,
		Metrics:         provider.Metrics(),
		Audit:           instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging),
	})

	var recordings []pipeline.Recording
	if summary != nil {
		recordings = summary.Recordings()
		annotateFailures(gha, summary.Results)
		logger.Info(fmt.Sprintf("processed %d files, replicated %d, deleted %d",
			len(summary.Files), len(destination.Succeeded(summary.Results)), summary.Deleted),
			logging.Backend(replicator.Name()))
	}

	outErr := writeRecordings(recordings, cfg.Output, gha)
	return errors.Join(runErr, outErr)
}

// annotateFailures emits a workflow warning for every file that did not reach
// its destination.
func annotateFailures(gha *ghaction.Commands, results []destination.Result) {
	for _, res := range results {
		if !res.OK() {
			gha.Warning(fmt.Sprintf("failed to replicate %s (meeting %s): %s", res.Path, res.ID, res.Error))
		}
	}
}

// newReplicator builds the backend the configuration selects.
func newReplicator(ctx context.Context, cfg config.Config, logger *slog.Logger) (pipeline.Replicator, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.DestinationDrive:
		credentials, err := google.DecodeCredentials(cfg.DriveCredentials)
		if err != nil {
			return nil, err
		}
		sa, err := google.ParseServiceAccount(credentials)
		if err != nil {
			return nil, err
		}
		client, err := drive.NewClient(ctx, credentials)
		if err != nil {
			return nil, err
		}
		logger.Info("replicating to Google Drive", slog.String("service_account", sa.ClientEmail))
		return drive.NewReplicator(client, logger), nil

	default:
		conf, err := rclone.DecodeConfig(cfg.RcloneConfig)
		if err != nil {
			return nil, err
		}
		client, err := rclone.NewClient(logger)
		if err != nil {
			return nil, err
		}
		if err := client.Init(ctx, conf); err != nil {
			return nil, err
		}
		logger.Info("replicating with rclone")
		return client, nil
	}
}

// writeRecordings publishes the recordings as JSON to the output file and the
// recordings step output.
func writeRecordings(recordings []pipeline.Recording, output string, gha *ghaction.Commands) error {
	if recordings == nil {
		recordings = []pipeline.Recording{}
	}

	data, err := json.MarshalIndent(recordings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recordings: %w", err)
	}

	var errs []error
	if output != "" {
		if err := renameio.WriteFile(output, append(data, '\n'), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("failed to write recordings to %s: %w", output, err))
		}
	}
	if err := gha.SetOutput(RecordingsOutput, string(data)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
