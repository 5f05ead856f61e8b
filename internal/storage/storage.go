// Package storage abstracts public file storage for uploaded assets.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"BlogCMS/internal/config"
)

// Storage stores publicly served files. Store returns the public URL the
// stored file is reachable under.
type Storage interface {
	Store(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// PathFromURL maps a previously returned public URL back to the
	// storage path, so references persisted in the database can be deleted.
	PathFromURL(url string) (string, bool)
}

func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "disk":
		return NewDisk(cfg.PublicDir, cfg.BaseURL), nil
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func stripBase(url, baseURL string) (string, bool) {
	base := strings.TrimSuffix(baseURL, "/") + "/"
	if !strings.HasPrefix(url, base) {
		return "", false
	}
	return strings.TrimPrefix(url, base), true
}
