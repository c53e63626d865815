// Package storage uploads profile attachments and returns their public URLs.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/supabase"
)

// ObjectStore writes an object under key and returns the URL clients fetch it from.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type SupabaseStore struct {
	client *supabase.Client
	bucket string
}

func NewSupabaseStore(client *supabase.Client, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

func (s *SupabaseStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := s.client.Upload(ctx, s.bucket, key, contentType, data); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.client.PublicURL(s.bucket, key), nil
}

// DiskStore writes objects below dir. The server exposes dir at /uploads.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Put(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + key)
	full := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return s.baseURL + "/uploads" + filepath.ToSlash(clean), nil
}
