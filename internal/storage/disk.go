package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore stores objects as flat files under a root directory and serves
// them from baseURL (e.g. "/media").
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, err
	}
	return &DiskStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *DiskStore) path(key string) (string, error) {
	// Keys are flat; reject anything that would escape the root.
	if key == "" || strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return "", errors.New("invalid object key")
	}
	return filepath.Join(s.root, key), nil
}

func (s *DiskStore) Put(_ context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}

func (s *DiskStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	// #nosec G304: path is validated against traversal in path()
	return os.ReadFile(p)
}

func (s *DiskStore) Copy(ctx context.Context, srcKey string) (string, error) {
	data, err := s.Get(ctx, srcKey)
	if err != nil {
		return "", err
	}
	newKey := RekeyFrom(srcKey)
	if err := s.Put(ctx, newKey, data); err != nil {
		return "", err
	}
	if thumb, err := s.Get(ctx, ThumbKey(srcKey)); err == nil {
		if err := s.Put(ctx, ThumbKey(newKey), thumb); err != nil {
			return "", err
		}
	}
	return newKey, nil
}

func (s *DiskStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	if !strings.HasSuffix(key, ThumbSuffix) {
		if err := os.Remove(p + ThumbSuffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (s *DiskStore) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *DiskStore) Owns(url string) bool {
	return strings.HasPrefix(url, s.baseURL+"/")
}
