package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore implements Store on a local directory tree: one subdirectory per
// container. Used for local runs and tests; overwrite-by-name semantics match
// the real store.
type FSStore struct {
	root    string
	baseURL string
}

func NewFSStore(root string) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FSStore{root: abs, baseURL: "file://" + abs}, nil
}

func (s *FSStore) Put(_ context.Context, container, name string, data []byte, _ string) error {
	dir := filepath.Join(s.root, container)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create container dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("put %s/%s: %w", container, name, err)
	}
	return nil
}

func (s *FSStore) BaseURL() string {
	return s.baseURL
}
