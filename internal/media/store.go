package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded media and returns a URL it can be fetched from.
type Store interface {
	Save(originalName string, r io.Reader) (string, error)
}

// DiskStore keeps uploads on local disk, served back under /uploads.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore ensures the upload directory exists.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the upload under a fresh name and returns its public URL.
func (s *DiskStore) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.baseURL + "/uploads/" + name, nil
}

// Dir exposes the storage directory for static serving.
func (s *DiskStore) Dir() string {
	return s.dir
}
