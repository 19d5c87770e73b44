// Package drive replicates downloaded recordings to Google Drive.
//
// The Client is a thin wrapper over the Drive v3 API authenticated with a
// service account. Shared drives are supported, so the service account only
// needs to be a member of the target drive.
//
// The Replicator walks the downloaded files in order and uploads each one
// below the folder its meeting resolves to in the folder map. One date
// subfolder is created per meeting and day, on first use:
//
//	<folder map target>/
//	    2024-01-02/
//	        10-00-00 GMT+0000 (UTC) - Shared Screen With Speaker View.mp4
//	        10-00-00 GMT+0000 (UTC) - Audio Only.m4a
//
// Example usage:
//
//	client, err := drive.NewClient(ctx, credentials)
//	if err != nil {
//	    return err
//	}
//	results, err := drive.NewReplicator(client, logger).Sync(ctx, files, total, folderMap)
package drive
