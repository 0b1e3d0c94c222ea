package domain

import (
	"context"
	"io"
)

// BlobWriter uploads objects to cold storage. Put is a single-shot upload;
// PutMultipart splits large payloads into concurrently uploaded parts.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}
