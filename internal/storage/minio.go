package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultURLExpiry = 15 * time.Minute

// MinIOStorage keeps exported schema snapshots in one bucket.
type MinIOStorage struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	now    func() time.Time
}

// NewMinIOStorage creates the client. It does not contact the server; call
// EnsureBucket on startup.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}
	return &MinIOStorage{client: mc, bucket: cfg.Bucket, expiry: expiry, now: time.Now}, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (s *MinIOStorage) EnsureBucket(ctx context.Context) error {
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := s.client.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return nil
}

// ObjectKey is the storage key of one schema export.
func ObjectKey(customerID, templateID string, at time.Time) string {
	return fmt.Sprintf("schemas/%s/%s/%s.json", customerID, templateID, at.UTC().Format("20060102T150405.000000000Z"))
}

// ExportSchema uploads a compiled schema and returns the object key and a
// presigned GET URL for it.
func (s *MinIOStorage) ExportSchema(ctx context.Context, customerID, templateID string, schema []byte) (string, string, error) {
	key := ObjectKey(customerID, templateID, s.now())
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(schema), int64(len(schema)),
		minio.PutObjectOptions{ContentType: "application/schema+json"})
	if err != nil {
		return "", "", fmt.Errorf("upload schema: %w", err)
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, make(url.Values))
	if err != nil {
		return key, "", fmt.Errorf("presign schema: %w", err)
	}
	return key, presigned.String(), nil
}
