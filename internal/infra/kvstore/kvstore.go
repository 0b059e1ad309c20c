// Package kvstore provides a small durable string key/value store backed by
// a single JSON file. Every write rewrites the file atomically (temp file +
// rename), so a crash never leaves a half-written store.
package kvstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File is a thread-safe file-backed key/value store.
type File struct {
	mu    sync.RWMutex
	path  string
	items map[string]string
}

// Open loads the store at path, creating parent directories as needed.
// A missing file yields an empty store.
func Open(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	f := &File{path: path, items: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.items); err != nil {
			// Corrupt store: start fresh rather than refuse to run.
			f.items = make(map[string]string)
		}
	}
	return f, nil
}

// Get returns the value for key. Missing keys return "", false.
func (f *File) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.items[key]
	return v, ok
}

// Set stores key=value and persists the store.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return f.saveLocked()
}

// SetAll stores several entries in one persisted write.
func (f *File) SetAll(entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range entries {
		f.items[k] = v
	}
	return f.saveLocked()
}

// Delete removes keys and persists the store. Missing keys are ignored.
func (f *File) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.items, k)
	}
	return f.saveLocked()
}

func (f *File) saveLocked() error {
	data, err := json.MarshalIndent(f.items, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
