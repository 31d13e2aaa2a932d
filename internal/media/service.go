// Package media handles image uploads: validation, staging while an admin
// dialog is open, and the final push to S3-compatible object storage.
package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxUploadBytes caps a single image upload.
const MaxUploadBytes = 5 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ErrTooLarge and ErrUnsupportedType are surfaced to the admin as inline
// upload errors.
var (
	ErrTooLarge        = fmt.Errorf("file exceeds %d MB", MaxUploadBytes>>20)
	ErrUnsupportedType = fmt.Errorf("unsupported image type")
)

// Uploader pushes one object to the media host and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader, size int64) (string, error)
}

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// Service uploads images to a MinIO/S3 bucket.
type Service struct {
	client *minio.Client
	bucket string
	base   string
}

func NewService(cfg Config) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create media client: %w", err)
	}
	base := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &Service{client: client, bucket: cfg.Bucket, base: base}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Service) Upload(ctx context.Context, objectName, contentType string, r io.Reader, size int64) (string, error) {
	if err := ValidateUpload(contentType, size); err != nil {
		return "", err
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return s.base + "/" + objectName, nil
}

// ValidateUpload applies the size and content-type policy shared by the
// staging layer and the direct upload path.
func ValidateUpload(contentType string, size int64) error {
	if size <= 0 || size > MaxUploadBytes {
		return ErrTooLarge
	}
	if _, ok := allowedContentTypes[strings.ToLower(contentType)]; !ok {
		return ErrUnsupportedType
	}
	return nil
}

// ExtensionFor maps an allowed content type to its object-name extension.
func ExtensionFor(contentType string) string {
	return allowedContentTypes[strings.ToLower(contentType)]
}

// ObjectName builds the bucket key for a committed upload, scoped per
// school so disaster recovery can restore one tenant at a time.
func ObjectName(schoolID, uploadID, contentType string) string {
	return url.PathEscape(schoolID) + "/" + uploadID + ExtensionFor(contentType)
}
