// Package gcs holds document storage behind a small interface. The real
// implementation talks to Google Cloud Storage; local file paths are also
// accepted so the CLI works without a bucket.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// Client implements Storage against one GCS bucket.
// It assumes Application Default Credentials are configured.
type Client struct {
	bucket string
}

func NewClient(bucket string) *Client {
	return &Client{bucket: bucket}
}

// Fetch downloads the bytes behind uri. A gs:// URI goes through the storage
// API; anything else is read as a local path.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "gs://") {
		data, err := os.ReadFile(strings.TrimPrefix(uri, "file://"))
		if err != nil {
			return nil, fmt.Errorf("read local file %q: %w", uri, err)
		}
		return data, nil
	}

	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid storage URI (no object path): %s", uri)
	}
	bucketName, objectPath := parts[0], parts[1]

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading bytes: %w", err)
	}
	return data, nil
}

// Store writes r into the configured bucket under objectName and returns the
// gs:// URI of the new object.
func (c *Client) Store(ctx context.Context, objectName string, r io.Reader) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("store: creating storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(c.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("store: copy to object writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("store: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", c.bucket, objectName), nil
}

// FilenameFromURI extracts the base filename.
// e.g. "gs://bucket/folder/file.pdf" gives "file.pdf".
func (c *Client) FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return path.Base(trimmed)
	}
	return path.Base(parts[1])
}

var _ Storage = (*Client)(nil)
