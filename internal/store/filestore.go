package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sales-visualizer/backend/internal/models"
)

// FileStore writes upload bytes to the content store. Path convention:
// {root}/{visualizationID}/{data|rscripts}/{filename}.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// NewFileStore creates the store root if needed.
func NewFileStore(root string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{root: root, logger: logger}, nil
}

// Root returns the store root directory.
func (s *FileStore) Root() string {
	return s.root
}

// Rel returns the store-relative form of an absolute file path, for building
// download URLs. Paths outside the root come back unchanged.
func (s *FileStore) Rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func kindDir(kind models.FileKind) string {
	if kind == models.FileKindScript {
		return "rscripts"
	}
	return "data"
}

// Write persists the full byte payload and returns the written path.
// Directory creation is idempotent. A same-named upload overwrites the
// previous file silently (accepted gap; logged so it stays visible). A
// partial write never survives: the file is removed on error.
func (s *FileStore) Write(visualizationID int64, kind models.FileKind, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.root, strconv.FormatInt(visualizationID, 10), kindDir(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if _, err := os.Stat(path); err == nil {
		s.logger.Warn("overwriting existing stored file", "path", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing file: %w", err)
	}

	return path, nil
}
