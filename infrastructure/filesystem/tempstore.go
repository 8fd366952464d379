package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"video-to-mp3/domain/conversion"

	"github.com/google/uuid"
)

// tempPrefix marks every file this process allocates
const tempPrefix = "v2m-"

// TempStore implements conversion.TempStorage on a local directory
type TempStore struct {
	dir   string
	newID func() string
}

// TempStoreOption is a functional option for configuring TempStore
type TempStoreOption func(*TempStore)

// WithIDGenerator sets the unique name generator (for testing)
func WithIDGenerator(fn func() string) TempStoreOption {
	return func(s *TempStore) {
		s.newID = fn
	}
}

// NewTempStore creates a TempStore rooted at dir, or at os.TempDir() when dir is empty
func NewTempStore(dir string, opts ...TempStoreOption) (*TempStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	s := &TempStore{
		dir:   dir,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the root directory
func (s *TempStore) Dir() string {
	return s.dir
}

// CreateUnique writes data to a new file named v2m-<uuid><suffix>
func (s *TempStore) CreateUnique(suffix string, data []byte) (string, error) {
	path := filepath.Join(s.dir, tempPrefix+s.newID()+filepath.Base(suffix))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return path, nil
}

// Path returns the location for name inside the root directory
func (s *TempStore) Path(name string) string {
	return filepath.Join(s.dir, tempPrefix+filepath.Base(name))
}

// ReadFile reads the whole file at path
func (s *TempStore) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp file: %w", err)
	}
	return data, nil
}

// RemoveIfExists deletes path, ignoring a file that is already gone
func (s *TempStore) RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Ensure TempStore implements conversion.TempStorage
var _ conversion.TempStorage = (*TempStore)(nil)
