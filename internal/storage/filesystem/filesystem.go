// Package filesystem implements the FileStorage interface over the local
// disk. It backs upload files, index artifact pairs, and media binaries.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/interfaces"
)

// Storage implements interfaces.FileStorage
type Storage struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.FileStorage = (*Storage)(nil)

// NewStorage creates a new filesystem storage
func NewStorage(logger arbor.ILogger) *Storage {
	return &Storage{logger: logger}
}

func (s *Storage) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *Storage) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (s *Storage) MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func (s *Storage) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (s *Storage) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
