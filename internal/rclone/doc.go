// Package rclone replicates downloaded recordings through the rclone CLI.
//
// The client wraps the rclone binary, which must be installed and on PATH.
// Init installs the provided configuration as rclone's config file, and Sync
// copies each file with a checksummed "rclone copy" to the first configured
// remote. Selecting among several remotes is not supported.
//
// Unlike the Drive backend, a failed copy does not stop the run: it is
// logged, recorded in the results with the exit code, and the next file is
// copied.
//
// Example usage:
//
//	client, err := rclone.NewClient(logger)
//	if err != nil {
//	    return err
//	}
//	if err := client.Init(ctx, config); err != nil {
//	    return err
//	}
//	results, err := client.Sync(ctx, files, total, folderMap)
package rclone
