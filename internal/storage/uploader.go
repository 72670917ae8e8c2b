// Package storage provides media object storage for listing images.
package storage

import "context"

// File is a single raw upload payload.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Uploader stores raw file payloads and returns stable public URLs, one per
// file, in input order. The namespace scopes objects to their owning listing
// (e.g. "posts/42") so payloads from different listings never collide.
type Uploader interface {
	UploadMany(ctx context.Context, files []File, namespace string) ([]string, error)
}
