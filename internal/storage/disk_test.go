package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"BlogCMS/internal/config"
)

func TestDiskStoreAndURLRoundTrip(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root, "http://localhost:8080/storage/")
	ctx := context.Background()

	url, err := d.Store(ctx, "uploads/posts/7.jpg", strings.NewReader("fake-image"), 10, "image/jpeg")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if url != "http://localhost:8080/storage/uploads/posts/7.jpg" {
		t.Fatalf("url: %q", url)
	}

	data, err := os.ReadFile(filepath.Join(root, "uploads", "posts", "7.jpg"))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "fake-image" {
		t.Fatalf("stored content: %q", data)
	}

	path, ok := d.PathFromURL(url)
	if !ok || path != "uploads/posts/7.jpg" {
		t.Fatalf("PathFromURL: %q %v", path, ok)
	}

	exists, err := d.Exists(ctx, path)
	if err != nil || !exists {
		t.Fatalf("Exists: %v %v", exists, err)
	}
}

func TestDiskStoreOverwritesExistingFile(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root, "http://x")
	ctx := context.Background()

	if _, err := d.Store(ctx, "a.txt", strings.NewReader("one"), 3, ""); err != nil {
		t.Fatalf("first Store: %v", err)
	}
	if _, err := d.Store(ctx, "a.txt", strings.NewReader("two"), 3, ""); err != nil {
		t.Fatalf("second Store: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "a.txt"))
	if string(data) != "two" {
		t.Fatalf("content after overwrite: %q", data)
	}
}

func TestDiskDeleteIsIdempotent(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root, "http://x")
	ctx := context.Background()

	if _, err := d.Store(ctx, "b.txt", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := d.Delete(ctx, "b.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := d.Delete(ctx, "b.txt"); err != nil {
		t.Fatalf("Delete of missing file should be a no-op: %v", err)
	}

	exists, err := d.Exists(ctx, "b.txt")
	if err != nil || exists {
		t.Fatalf("Exists after delete: %v %v", exists, err)
	}
}

func TestPathFromURLRejectsForeignURLs(t *testing.T) {
	d := NewDisk(t.TempDir(), "http://localhost:8080/storage")
	if _, ok := d.PathFromURL("https://elsewhere.example/uploads/posts/1.jpg"); ok {
		t.Fatalf("foreign URL must not map to a path")
	}
}

func TestNewPicksDriver(t *testing.T) {
	s, err := New(config.StorageConfig{Driver: "disk", PublicDir: t.TempDir(), BaseURL: "http://x"})
	if err != nil {
		t.Fatalf("New disk: %v", err)
	}
	if _, ok := s.(*Disk); !ok {
		t.Fatalf("expected *Disk, got %T", s)
	}

	if _, err := New(config.StorageConfig{Driver: "tape"}); err == nil {
		t.Fatalf("unknown driver should fail")
	}
}
