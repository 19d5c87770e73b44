// Package google loads Google service-account credentials and turns them
// into authorized token sources for the Drive API.
//
// Credentials are accepted the way CI secrets usually carry them: either the
// raw JSON key file or its base64 encoding.
package google
