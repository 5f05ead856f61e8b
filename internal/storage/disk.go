package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores files under a local directory served as static content,
// in the manner of a framework "public disk".
type Disk struct {
	root    string
	baseURL string
}

func NewDisk(root, baseURL string) *Disk {
	return &Disk{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (d *Disk) Store(_ context.Context, path string, r io.Reader, _ int64, _ string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("mkdir for %s: %w", path, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	return d.baseURL + "/" + path, nil
}

func (d *Disk) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(d.root, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *Disk) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(d.root, filepath.FromSlash(path)))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (d *Disk) PathFromURL(url string) (string, bool) {
	return stripBase(url, d.baseURL)
}
