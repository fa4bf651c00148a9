// Package storage saves uploaded product images either on local disk
// (served under /uploads) or in a MinIO bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/inventory-pos/internal/config"
)

var ErrUploadFailed = errors.New("upload failed")

// Store persists image bytes and returns the URL clients use to fetch
// them. Delete accepts a URL previously returned by Save.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// New builds the Store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.UploadDir, "/uploads"), nil
	case "minio":
		m, err := NewMinio(cfg)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// objectName keeps the extension of the uploaded file and replaces the
// rest with a random id.
func objectName(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// Local writes files into Dir and serves them under URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir, urlPrefix string) *Local {
	return &Local{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

func (l *Local) Save(_ context.Context, filename string, r io.Reader, _ int64, _ string) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	name := objectName(filename)
	f, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return l.URLPrefix + "/" + name, nil
}

// Delete removes the file behind url. URLs outside URLPrefix and files
// that are already gone are ignored.
func (l *Local) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, l.URLPrefix+"/") {
		return nil
	}
	name := path.Base(url)
	err := os.Remove(filepath.Join(l.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
