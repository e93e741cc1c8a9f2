package storage

import (
	"context"
	"fmt"
	"os"
)

// LocalStorage serves dump files straight from the local filesystem;
// the key is the file path.
type LocalStorage struct{}

// NewLocalStorage creates a local filesystem DumpStorage.
// Parameters: none.
// Returns:
//   - *LocalStorage: storage instance.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// Fetch verifies the dump file exists and returns its path unchanged.
// Parameters:
//   - ctx: unused; present for interface symmetry.
//   - key: filesystem path of the dump.
// Returns:
//   - string: the same path.
//   - error: non-nil if the file is missing or unreadable.
func (s *LocalStorage) Fetch(ctx context.Context, key string) (string, error) {
	if _, err := os.Stat(key); err != nil {
		return "", fmt.Errorf("dump file not accessible: %w", err)
	}
	return key, nil
}

// Delete removes the dump file. A file already gone is not an error;
// cleanup runs on both success and failure paths and must be
// idempotent.
// Parameters:
//   - ctx: unused; present for interface symmetry.
//   - key: filesystem path of the dump.
// Returns:
//   - error: non-nil if removal fails for a reason other than absence.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(key); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete dump file: %w", err)
	}
	return nil
}

// Exists checks if the dump file is present.
// Parameters:
//   - ctx: unused; present for interface symmetry.
//   - key: filesystem path of the dump.
// Returns:
//   - bool: true if the file exists.
//   - error: non-nil on stat failures other than absence.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := os.Stat(key); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
