package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore writes to a Google Cloud Storage bucket.
type GCSStore struct {
	client        *storage.Client
	bucket        string
	accessBaseURL string
}

// NewGCSStore prefers application default credentials; credJSON is used when
// set (local runs).
func NewGCSStore(ctx context.Context, bucket, credJSON, accessBaseURL string) (*GCSStore, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	if accessBaseURL == "" {
		accessBaseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, accessBaseURL: accessBaseURL}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, progress ProgressFunc) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if progress != nil {
		wc.ProgressFunc = func(n int64) { progress(n, size) }
	}

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload %s to Google Cloud Storage: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return joinURL(s.accessBaseURL, key), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
