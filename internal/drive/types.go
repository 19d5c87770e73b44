package drive

import (
	"context"
	"io"
)

// FileInfo is the metadata Drive returns for a created file or folder
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// Size is the size of the file in bytes (not populated for folders)
	Size int64 `json:"size,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`

	// StatusCode is the HTTP status of the create call
	StatusCode int `json:"-"`
}

// Uploader is the part of the Drive API the Replicator needs.
type Uploader interface {
	CreateFolder(ctx context.Context, name, parent string) (*FileInfo, error)
	UploadFile(ctx context.Context, name, parent string, content io.Reader) (*FileInfo, error)
}
