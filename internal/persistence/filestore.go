package persistence

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileStore removes attachment blobs from local disk by storage key.
// Keys are relative paths under the base directory.
type FileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewFileStore constructs the store.
func NewFileStore(baseDir string, logger *zap.Logger) *FileStore {
	return &FileStore{baseDir: baseDir, logger: logger}
}

// Remove deletes the blobs for the given storage keys. Missing files are
// not an error.
func (s *FileStore) Remove(_ context.Context, storageKeys []string) error {
	for _, key := range storageKeys {
		clean := filepath.Clean(key)
		if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
			s.logger.Warn("skipping suspicious storage key", zap.String("key", key))
			continue
		}
		path := filepath.Join(s.baseDir, clean)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("attachment blob not removed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
