package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/iliyamo/inventory-pos/internal/config"
)

// Minio stores images in an S3 compatible bucket and hands out public
// object URLs.
type Minio struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

func NewMinio(cfg config.StorageConfig) (*Minio, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Minio{client: client, bucket: cfg.MinioBucket, endpoint: cfg.MinioEndpoint, useSSL: cfg.MinioUseSSL}, nil
}

func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *Minio) Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	name := objectName(filename)
	_, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return m.publicURL(name), nil
}

// Delete removes the object behind url when it points into this bucket.
func (m *Minio) Delete(ctx context.Context, rawURL string) error {
	name, ok := m.objectFromURL(rawURL)
	if !ok {
		return nil
	}
	return m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
}

func (m *Minio) publicURL(name string) string {
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: m.endpoint, Path: "/" + m.bucket + "/" + name}).String()
}

func (m *Minio) objectFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != m.endpoint {
		return "", false
	}
	prefix := "/" + m.bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	return path.Base(u.Path), true
}
