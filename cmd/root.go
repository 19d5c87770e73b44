package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the zoomsync application
var rootCmd = &cobra.Command{
	Use:   "zoomsync",
	Short: "Backs up Zoom cloud recordings to Google Drive or an rclone remote",
	Long: `zoomsync downloads the Zoom cloud recordings of a date range and copies
them to Google Drive or to any rclone remote. Replicated recordings can be
deleted from Zoom afterwards.

It is meant to run as a scheduled job, for example as a GitHub Action:
every input can be passed as a flag, an environment variable or an
action input.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "zoomsync version %s\n" .Version}}`)

	// If no subcommand is provided, run the sync command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "sync")
	}

	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
