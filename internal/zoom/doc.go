// Package zoom provides a client for the Zoom cloud recording API.
//
// The client covers the calls a recording backup run needs:
//   - Exchanging account credentials for a bearer token (server-to-server OAuth)
//   - Listing a user's recordings in a date range, following every page
//   - Streaming recording files to a local directory tree
//   - Deleting a recording once it has been replicated elsewhere
//
// Authenticate returns an explicit *Client; nothing in this package keeps
// process-wide state.
//
// Example usage:
//
//	client, err := zoom.Authenticate(ctx, zoom.Credentials{
//	    AccountID:    accountID,
//	    ClientID:     clientID,
//	    ClientSecret: clientSecret,
//	}, zoom.Options{})
//	if err != nil {
//	    return err
//	}
//
//	meetings, err := client.ListRecordings(ctx, "me", "2024-01-01", "2024-01-07")
//	files, total := zoom.BuildFiles(meetings, zoom.DefaultDownloadDir)
//	err = client.DownloadFiles(ctx, files, total)
package zoom
