package abacus

import (
	"fmt"
	"hash"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// Keys under which the calculator persists its state.
const (
	HistoryKey = "calculatorHistory"
	ThemeKey   = "calculatorTheme"
)

// Store is the key-value store the calculator persists to.
// Get returns ErrNotFound for a key that was never set.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// FileStore is a Store that keeps one JSON record per key on a filesystem.
// It is safe for concurrent use.
type FileStore struct {
	root     string
	hashFunc HashFunc
	nowFunc  NowFunc
	mu       sync.RWMutex
	fs       afero.Fs
}

// HashFunc defines a function that creates a new hash.Hash instance.
type HashFunc func() hash.Hash

// NowFunc defines a function that returns the current time.
type NowFunc func() time.Time

// StoreOption defines a function that configures a FileStore.
type StoreOption func(*FileStore)

// OpenStore creates a file store rooted at the given directory.
// The directory will be created if it doesn't exist.
func OpenStore(root string, options ...StoreOption) (*FileStore, error) {
	s := &FileStore{
		root:     root,
		fs:       afero.NewOsFs(),
		nowFunc:  time.Now,
		hashFunc: defaultHashFunc,
	}

	for _, option := range options {
		option(s)
	}

	if err := s.fs.MkdirAll(s.recordsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create records directory: %w", err)
	}

	return s, nil
}

// OpenMemoryStore creates a store backed by an in-memory filesystem.
func OpenMemoryStore() *FileStore {
	s, err := OpenStore("", WithFs(afero.NewMemMapFs()))
	if err != nil {
		panic(fmt.Sprintf("failed to create memory store: %v", err))
	}
	return s
}

// Get returns the value stored under key.
// Returns ErrNotFound if the key has no record and ErrCorruptRecord if the
// record does not match its checksum.
func (s *FileStore) Get(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.recordPath(s.keyHash(key))
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to check record: %w", err)
	}
	if !exists {
		return "", ErrNotFound
	}

	r, err := s.loadRecord(path)
	if err != nil {
		return "", err
	}
	if r.Key != key {
		return "", fmt.Errorf("%w: record holds key %q", ErrCorruptRecord, r.Key)
	}
	return r.Value, nil
}

// Set stores value under key, replacing any previous value.
func (s *FileStore) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := &record{
		Key:       key,
		Value:     value,
		Checksum:  s.checksum(value),
		UpdatedAt: s.now(),
	}
	if err := s.saveRecord(s.recordPath(s.keyHash(key)), r); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Has reports whether key has a record.
func (s *FileStore) Has(key string) bool {
	_, err := s.Get(key)
	return err == nil
}

// Delete removes the record for key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.recordPath(s.keyHash(key))
	if exists, _ := afero.Exists(s.fs, path); exists {
		if err := s.fs.Remove(path); err != nil {
			return fmt.Errorf("failed to remove record: %w", err)
		}
	}
	return nil
}

// Clear removes every record.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.RemoveAll(s.recordsDir()); err != nil {
		return fmt.Errorf("failed to remove records: %w", err)
	}
	if err := s.fs.MkdirAll(s.recordsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to recreate records directory: %w", err)
	}
	return nil
}

// Close releases the store. It is a no-op for file stores.
func (s *FileStore) Close() error {
	return nil
}

// recordsDir returns the path to the records directory.
func (s *FileStore) recordsDir() string {
	return filepath.Join(s.root, "records")
}

// recordPath returns the path to the record file for a key hash.
func (s *FileStore) recordPath(keyHash string) string {
	if len(keyHash) < 2 {
		panic(fmt.Sprintf("key hash too short: %s", keyHash))
	}
	prefix := keyHash[:2]
	return filepath.Join(s.recordsDir(), prefix, keyHash+".json")
}

func (s *FileStore) now() time.Time {
	return s.nowFunc()
}

// defaultHashFunc returns the default hash function (xxHash64).
func defaultHashFunc() hash.Hash {
	return xxhash.New()
}
