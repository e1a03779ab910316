package storage

import (
	"context"
	"time"
)

// StorageService stores delivery proof photos and hands back permanent
// identifiers. The fulfillment engine records the identifier on the bid's
// delivery progress; the bytes themselves never enter the core.
type StorageService interface {
	// UploadProofPhoto uploads a local file into the proofs folder and
	// returns its permanent identifier.
	UploadProofPhoto(ctx context.Context, localFilePath string) (string, error)
	// DeleteFile removes a stored file by its identifier.
	DeleteFile(ctx context.Context, publicID string) error
	// GetDownloadURL constructs a public URL for a stored photo.
	GetDownloadURL(ctx context.Context, publicID string) (string, error)
	// GetSecureDownloadURL generates a signed, short-lived URL.
	GetSecureDownloadURL(ctx context.Context, publicID string, expires time.Duration) (string, error)
}
