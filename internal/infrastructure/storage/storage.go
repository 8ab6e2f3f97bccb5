// Package storage defines the evidence object store contract. Direct
// evidence attached to gaps lives in object storage; the database only
// keeps object keys.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored evidence object
type ObjectInfo struct {
	// Object key within the evidence bucket
	Key string `json:"key"`

	// Original file name supplied at upload time
	FileName string `json:"file_name"`

	// Declared content type
	ContentType string `json:"content_type"`

	// Object size in bytes
	Size int64 `json:"size"`

	// Upload timestamp
	UploadedAt time.Time `json:"uploaded_at"`
}

// EvidenceStore persists and serves evidence objects
type EvidenceStore interface {
	// Put stores an object and returns its info
	Put(ctx context.Context, key, fileName, contentType string, size int64, body io.Reader) (*ObjectInfo, error)

	// PresignedGetURL returns a time-limited download URL
	PresignedGetURL(ctx context.Context, key string) (string, error)

	// Delete removes an object
	Delete(ctx context.Context, key string) error
}
