package gcs

import (
	"context"
	"io"
)

// Storage fetches and stores uploaded documents. The interface exists so the
// worker and the API can be tested without a bucket.
type Storage interface {
	// Fetch downloads the bytes behind a gs:// URI or a local file path.
	Fetch(ctx context.Context, uri string) ([]byte, error)

	// Store writes r under objectName and returns the resulting gs:// URI.
	Store(ctx context.Context, objectName string, r io.Reader) (string, error)

	// FilenameFromURI extracts the base filename from a storage URI.
	FilenameFromURI(uri string) string
}
