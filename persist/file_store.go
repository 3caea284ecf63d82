package persist

import (
	"fmt"
	"os"
	"path/filepath"
)

const vaultFileMode = 0600 // File: owner rw only

// FileStore keeps the vault document in a single file on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file is
// not created until the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the vault file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Exists() (bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat vault file: %w", err)
	}
	return true, nil
}

func (s *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}
	return data, nil
}

// Save writes the document to a temporary file in the same directory and
// renames it over the target, so a crash never leaves a half-written
// vault behind.
func (s *FileStore) Save(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary vault file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace vault file: %w", err)
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	defer f.Close()

	if err := f.Chmod(vaultFileMode); err != nil {
		return fmt.Errorf("failed to set vault file mode: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync vault file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close vault file: %w", err)
	}
	return nil
}
