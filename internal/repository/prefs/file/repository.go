// Package file persists preference records as one JSON blob per key on
// local disk. Preferences never enter the replicated room tree.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gigaba/overlay-server/internal/repository/prefs"
)

type repo struct {
	dir string
	mu  sync.RWMutex
}

func NewRepo(dir string) (*repo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create prefs dir: %w", err)
	}

	return &repo{dir: dir}, nil
}

// Keys are server-generated (prefix + uuid) but path separators are refused
// anyway so a record can never land outside the store directory.
func (r *repo) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid prefs key %q", key)
	}

	return filepath.Join(r.dir, key+".json"), nil
}

func (r *repo) Get(key string) ([]byte, error) {
	path, err := r.path(key)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, prefs.ErrNotFound
		}
		return nil, err
	}

	return raw, nil
}

func (r *repo) Set(key string, value []byte) error {
	path, err := r.path(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func (r *repo) Delete(key string) error {
	path, err := r.path(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return prefs.ErrNotFound
		}
		return err
	}

	return nil
}
