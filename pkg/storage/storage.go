package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore stores uploaded bytes and returns a public URL. The sync
// engine only ever sees URLs; where the bytes live is its own concern.
type FileStore interface {
	Save(file *multipart.FileHeader) (string, error)
	Delete(url string) error
}

// LocalStore writes uploads to a directory served as static files.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save stores the upload under a uuid name, keeping the extension so the
// static file server picks a sensible content type.
func (s *LocalStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + "/uploads/" + name, nil
}

// Delete removes the file behind a URL previously returned by Save.
// Unknown URLs are ignored.
func (s *LocalStore) Delete(url string) error {
	idx := strings.LastIndex(url, "/uploads/")
	if idx == -1 {
		return nil
	}
	name := url[idx+len("/uploads/"):]
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
