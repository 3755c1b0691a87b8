package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore serves objects from a local directory. Used for development and
// for the collaborator fakes in tests.
type FSStore struct {
	Root string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{Root: root}
}

func (s *FSStore) Download(_ context.Context, ref string) ([]byte, error) {
	full := filepath.Join(s.Root, filepath.FromSlash(ref))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}
