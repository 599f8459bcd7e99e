package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// ObjectStorage defines an interface for bucket operations to enable mocking
//
//go:generate mockgen -source=objectstorage.go -destination=../mocks/objectstorage.go -package=mocks -mock_names=ObjectStorage=MockObjectStorage
type ObjectStorage interface {
	// GetObject returns the object content. A missing key yields domain.ErrObjectNotFound.
	GetObject(ctx context.Context, key string) ([]byte, error)

	// PutObject uploads data under key
	PutObject(ctx context.Context, key string, data []byte, contentType string) error

	// EnsureBucket creates the bucket if it does not exist
	EnsureBucket(ctx context.Context) error
}

// ObjectStorageConfig holds the S3-compatible endpoint settings
type ObjectStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
}

// MinioObjectStorage implements ObjectStorage on minio-go
type MinioObjectStorage struct {
	client *minio.Client
	bucket string
	region string
}

// NewMinioObjectStorage creates a client for an S3-compatible bucket
func NewMinioObjectStorage(cfg ObjectStorageConfig) (ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &MinioObjectStorage{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// GetObject returns the object content
func (s *MinioObjectStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(err, key)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.translate(err, key)
	}

	return data, nil
}

// PutObject uploads data under key
func (s *MinioObjectStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return nil
}

// EnsureBucket creates the bucket if it does not exist
func (s *MinioObjectStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	return nil
}

func (s *MinioObjectStorage) translate(err error, key string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", domain.ErrObjectNotFound, key)
	}
	return fmt.Errorf("failed to get object %s: %w", key, err)
}
