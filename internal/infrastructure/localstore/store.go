// Package localstore is the device-local key-value file backing the local
// auth and data backends and the vermactl session. Values are JSON documents
// stored under string keys in a single file.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Keys used by the storefront.
const (
	KeyUsers          = "users"
	KeyCurrentUser    = "currentUser"
	KeyProducts       = "products"
	KeyContacts       = "contactSubmissions"
	keyViewedProducts = "viewedProducts_"
)

// ViewedProductsKey returns the recently-viewed key for a user.
func ViewedProductsKey(userID string) string {
	return keyViewedProducts + userID
}

// Store reads and writes the key-value file. Every operation re-reads the
// file while holding an exclusive lock on a sibling ".lock" file, so
// concurrent vermactl processes do not lose each other's writes. Writes
// replace the file atomically.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a Store backed by path, creating parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("localstore: create dir: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Get decodes the value under key into v. It reports false when the key is
// absent.
func (s *Store) Get(key string, v any) (found bool, err error) {
	err = s.locked(func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		raw, ok := doc[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("localstore: decode %s: %w", key, err)
		}
		found = true
		return nil
	})
	return found, err
}

// Put stores v under key.
func (s *Store) Put(key string, v any) error {
	return s.locked(func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		if err := set(doc, key, v); err != nil {
			return err
		}
		return s.write(doc)
	})
}

// Delete removes key. Removing an absent key is not an error.
func (s *Store) Delete(key string) error {
	return s.locked(func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		if _, ok := doc[key]; !ok {
			return nil
		}
		delete(doc, key)
		return s.write(doc)
	})
}

// Update decodes the value under key into a T (zero when absent), passes it
// to fn and stores the result, all under one lock. Nothing is written when fn
// returns an error.
func Update[T any](s *Store, key string, fn func(*T) error) error {
	return s.locked(func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}

		var v T
		if raw, ok := doc[key]; ok {
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("localstore: decode %s: %w", key, err)
			}
		}
		if err := fn(&v); err != nil {
			return err
		}
		if err := set(doc, key, v); err != nil {
			return err
		}
		return s.write(doc)
	})
}

// locked runs fn under the in-process mutex and the cross-process file lock.
func (s *Store) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("localstore: open lock: %w", err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("localstore: lock: %w", err)
	}
	defer func() { _ = unlockFile(f) }()

	return fn()
}

func set(doc map[string]json.RawMessage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", key, err)
	}
	doc[key] = raw
	return nil
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("localstore: read: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("localstore: corrupt file %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("localstore: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.json")
	if err != nil {
		return fmt.Errorf("localstore: write: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("localstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("localstore: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("localstore: write: %w", err)
	}
	return nil
}
