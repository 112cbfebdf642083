package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
)

const presignExpiry = 24 * time.Hour

// Compile-time check to ensure MinioStore implements ObjectStorage
var _ interfaces.ObjectStorage = (*MinioStore)(nil)

// MinioStore keeps binary artifacts (audio clips, illustrations, classic
// story source files) in a single S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, logger *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
		}
		logger.Info("Created storage bucket", zap.String("bucket", bucket))
	}

	return &MinioStore{
		client: client,
		bucket: bucket,
		logger: logger.Named("MinioStore"),
	}, nil
}

// Save uploads data under path and returns the stored object path.
func (s *MinioStore) Save(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("Failed to upload object", zap.Error(err), zap.String("path", path))
		return "", fmt.Errorf("failed to upload object %q: %w", path, err)
	}
	return path, nil
}

// URL returns a presigned download link for path.
func (s *MinioStore) URL(ctx context.Context, path string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, presignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %q: %w", path, err)
	}
	return u.String(), nil
}

// Exists reports whether an object is present at path.
func (s *MinioStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		var respErr minio.ErrorResponse
		if errors.As(err, &respErr) && respErr.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %q: %w", path, err)
	}
	return true, nil
}

// Open streams the object at path. The caller must close the returned reader.
func (s *MinioStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open object %q: %w", path, err)
	}
	return obj, nil
}
