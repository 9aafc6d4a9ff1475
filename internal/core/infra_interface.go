package core

import "context"

// RemoteFile is a document fetched from an external store.
type RemoteFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// ObjectClient reads source documents from S3 or any S3-compatible storage (R2, MinIO).
type ObjectClient interface {
	GetFile(ctx context.Context, bucket, key string) (*RemoteFile, error)
}

// DriveClient downloads files from Google Drive. accessToken is the caller's
// OAuth token; when empty the client falls back to its own credentials.
type DriveClient interface {
	Download(ctx context.Context, fileID, accessToken string) (*RemoteFile, error)
}
