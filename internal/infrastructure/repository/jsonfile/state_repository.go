// Package jsonfile keeps the ledger document in a single file on local disk.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

type StateRepository struct {
	path string
}

func NewStateRepository(path string) *StateRepository {
	if path == "" {
		path = "./data/plugin_data.json"
	}
	return &StateRepository{path: path}
}

func (r *StateRepository) Path() string {
	return r.path
}

func (r *StateRepository) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrStateNotFound, "read state file", fmt.Errorf("%s does not exist", r.path))
		}
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "read state file", err)
	}
	return data, nil
}

// Write replaces the file through a temp file and rename so readers never
// observe a half-written document.
func (r *StateRepository) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
