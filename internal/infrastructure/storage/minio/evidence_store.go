// Package minio implements the evidence store on MinIO or any
// S3-compatible backend
package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/regtrace/regtrace/internal/infrastructure/storage"
	"github.com/regtrace/regtrace/pkg/config"
	"github.com/regtrace/regtrace/pkg/errors"
)

type evidenceStore struct {
	client        *minio.Client
	bucket        string
	presignExpiry time.Duration
}

// NewEvidenceStore connects to the object store and ensures the
// evidence bucket exists
func NewEvidenceStore(ctx context.Context, cfg config.StorageConfig) (storage.EvidenceStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.InfrastructureError("minio", err)
	}

	exists, err := client.BucketExists(ctx, cfg.EvidenceBucket)
	if err != nil {
		return nil, errors.InfrastructureError("minio", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.EvidenceBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.InfrastructureError("minio", err)
		}
	}

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &evidenceStore{client: client, bucket: cfg.EvidenceBucket, presignExpiry: expiry}, nil
}

func (s *evidenceStore) Put(ctx context.Context, key, fileName, contentType string, size int64, body io.Reader) (*storage.ObjectInfo, error) {
	opts := minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"file-name": fileName,
		},
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, opts)
	if err != nil {
		return nil, errors.InfrastructureError("minio", err)
	}
	return &storage.ObjectInfo{
		Key:         info.Key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        info.Size,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (s *evidenceStore) PresignedGetURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, url.Values{})
	if err != nil {
		return "", errors.InfrastructureError("minio", err)
	}
	return u.String(), nil
}

func (s *evidenceStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.InfrastructureError("minio", err)
	}
	return nil
}
