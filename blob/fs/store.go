// Package fs provides a filesystem-backed blob.Store. Every key maps to one
// file under the root directory, so stage outputs stay inspectable with
// ordinary shell tools.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/lexit/blob"
)

// tempPattern names in-flight writes so List and Exists never surface them.
const tempPattern = ".tmp-*"

// Store keeps each blob as one file under root.
type Store struct {
	root string

	mu     sync.RWMutex
	closed bool
}

var _ blob.Store = (*Store)(nil)

// OpenStore opens a filesystem-backed blob store rooted at dir.
// Creates the directory if it doesn't exist.
func OpenStore(dir string) (blob.Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{root: dir}, nil
}

// Close marks the store closed. Subsequent operations fail with
// blob.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *Store) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return blob.ErrStoreClosed
	}
	return nil
}

// Get retrieves the payload stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", blob.ErrNotFound, key)
		}
		return nil, err
	}
	return data, nil
}

// Put stores the payload at key. The payload lands in a temp file first and
// is renamed into place, so a crash mid-write never leaves a readable
// partial payload under the key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := s.guard(); err != nil {
		return err
	}
	target := s.path(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Exists reports whether key holds a payload.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	info, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// List returns all keys beginning with prefix, in lexicographic order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	// Walk only the directory portion of the prefix.
	startDir := s.root
	if i := strings.LastIndexByte(prefix, '/'); i >= 0 {
		startDir = filepath.Join(s.root, filepath.FromSlash(prefix[:i]))
	}
	if _, err := os.Stat(startDir); os.IsNotExist(err) {
		return []string{}, nil
	}

	keys := []string{}
	err := filepath.WalkDir(startDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if matched, _ := filepath.Match(tempPattern, d.Name()); matched {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
