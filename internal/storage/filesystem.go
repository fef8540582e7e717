package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore persists blobs under a media root directory, one file per
// key. Writes go through a temp file + rename so readers never observe a
// partially written PDF.
type FilesystemStore struct {
	root    string
	baseURL string
}

// NewFilesystemStore creates the media root if needed. baseURL is prepended
// to keys by URL (e.g. "/media").
func NewFilesystemStore(root, baseURL string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FilesystemStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FilesystemStore) Save(key string, data []byte) error {
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (s *FilesystemStore) Open(key string) (io.ReadCloser, error) {
	return os.Open(s.path(key))
}

func (s *FilesystemStore) Read(key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}

func (s *FilesystemStore) Exists(key string) bool {
	info, err := os.Stat(s.path(key))
	return err == nil && !info.IsDir()
}

func (s *FilesystemStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
