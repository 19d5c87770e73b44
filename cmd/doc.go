// Package cmd implements the command-line interface for zoomsync.
//
// This package provides the following commands:
//   - sync: Download Zoom recordings and replicate them to Drive or rclone
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for the commands and inputs
//
// The sync command is the default command when no subcommand is specified.
package cmd
