package drive

import (
	"context"
	"fmt"
	"io"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/zoomsync/internal/google"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// BinaryMimeType is used for every uploaded recording
	BinaryMimeType = "application/octet-stream"

	fileFields = "id, name, mimeType, size, parents"
)

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
}

// NewClient creates a Drive client authenticated as the service account in
// credentials (raw key file JSON). Extra options are passed to the service,
// tests use them to point the client at a fake endpoint.
func NewClient(ctx context.Context, credentials []byte, opts ...option.ClientOption) (*Client, error) {
	ts, err := google.TokenSource(ctx, credentials, google.DriveScopes...)
	if err != nil {
		return nil, err
	}

	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return newClient(ctx, opts...)
}

func newClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: driveService}, nil
}

// CreateFolder creates a folder named name inside parent
func (c *Client) CreateFolder(ctx context.Context, name, parent string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	if parent == "" {
		return nil, fmt.Errorf("parent folder is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  []string{parent},
	}

	driveFile, err := c.service.Files.Create(file).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}
	if driveFile.Id == "" {
		return nil, fmt.Errorf("failed to create folder %q: no id returned", name)
	}

	return convertToFileInfo(driveFile), nil
}

// UploadFile uploads content as an opaque binary file named name inside parent
func (c *Client) UploadFile(ctx context.Context, name, parent string, content io.Reader) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if content == nil {
		return nil, fmt.Errorf("file content is required")
	}

	file := &drive.File{
		Name:    name,
		Parents: []string{parent},
	}

	driveFile, err := c.service.Files.Create(file).
		Context(ctx).
		SupportsAllDrives(true).
		Media(content, googleapi.ContentType(BinaryMimeType)).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file %q: %w", name, err)
	}

	return convertToFileInfo(driveFile), nil
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	return &FileInfo{
		ID:         f.Id,
		Name:       f.Name,
		MimeType:   f.MimeType,
		Size:       f.Size,
		Parents:    f.Parents,
		StatusCode: f.HTTPStatusCode,
	}
}
