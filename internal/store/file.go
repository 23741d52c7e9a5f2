package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lox/unoduel/internal/game"
)

// DefaultPath is where the file store keeps the save when none is configured
const DefaultPath = "unoduel-save.json"

// FileStore keeps the snapshot in a JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{path: path}
}

// Path returns the file the snapshot is written to
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Save(ctx context.Context, snapshot game.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return writeFileAtomic(f.path, data, 0o644)
}

func (f *FileStore) Load(ctx context.Context) (game.Snapshot, error) {
	var snapshot game.Snapshot
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot, ErrNoSnapshot
	}
	if err != nil {
		return snapshot, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return snapshot, nil
}

func (f *FileStore) Delete(ctx context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}
