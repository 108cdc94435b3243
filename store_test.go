package abacus

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestFileStore_GetSet(t *testing.T) {
	store, memFs := setupTestStore(t, "abacus-store-test")

	if _, err := store.Get(ThemeKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ThemeKey, "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	assertStored(t, store, ThemeKey, "dark")

	if err := store.Set(ThemeKey, "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	assertStored(t, store, ThemeKey, "light")

	// The record file is named by the key hash under a two-character prefix.
	path := store.recordPath(store.keyHash(ThemeKey))
	if filepath.Base(filepath.Dir(path)) != store.keyHash(ThemeKey)[:2] {
		t.Fatalf("unexpected record layout %s", path)
	}
	exists, err := afero.Exists(memFs, path)
	if err != nil || !exists {
		t.Fatalf("record file %s missing: %v", path, err)
	}
	if exists, _ := afero.Exists(memFs, path+".tmp"); exists {
		t.Fatal("temporary file left behind")
	}
}

func TestFileStore_InvalidKey(t *testing.T) {
	store := OpenMemoryStore()

	if _, err := store.Get(""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Get: expected ErrInvalidKey, got %v", err)
	}
	if err := store.Set("", "x"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Set: expected ErrInvalidKey, got %v", err)
	}
	if err := store.Delete(""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Delete: expected ErrInvalidKey, got %v", err)
	}
}

func TestFileStore_DeleteAndClear(t *testing.T) {
	store := OpenMemoryStore()
	_ = store.Set(ThemeKey, "dark")
	_ = store.Set(HistoryKey, "[]")

	if err := store.Delete(ThemeKey); err != nil {
		t.Fatal(err)
	}
	if store.Has(ThemeKey) {
		t.Fatal("theme should be gone")
	}
	if !store.Has(HistoryKey) {
		t.Fatal("history should remain")
	}
	if err := store.Delete(ThemeKey); err != nil {
		t.Fatalf("deleting a missing key: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if store.Has(HistoryKey) {
		t.Fatal("history should be gone after Clear")
	}
	if err := store.Set(HistoryKey, "[]"); err != nil {
		t.Fatalf("Set after Clear: %v", err)
	}
}

func TestFileStore_CorruptRecord(t *testing.T) {
	t.Run("checksum mismatch", func(t *testing.T) {
		store, memFs := setupTestStore(t, "abacus-corrupt")
		if err := store.Set(HistoryKey, `["1 + 1 = 2"]`); err != nil {
			t.Fatal(err)
		}

		path := store.recordPath(store.keyHash(HistoryKey))
		tampered, _ := json.Marshal(record{
			Key:      HistoryKey,
			Value:    `["1 + 1 = 3"]`,
			Checksum: store.checksum(`["1 + 1 = 2"]`),
		})
		if err := afero.WriteFile(memFs, path, tampered, 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := store.Get(HistoryKey); !errors.Is(err, ErrCorruptRecord) {
			t.Fatalf("expected ErrCorruptRecord, got %v", err)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		store, memFs := setupTestStore(t, "abacus-invalid")
		_ = store.Set(ThemeKey, "dark")

		path := store.recordPath(store.keyHash(ThemeKey))
		if err := afero.WriteFile(memFs, path, []byte("invalid json"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := store.Get(ThemeKey); !errors.Is(err, ErrCorruptRecord) {
			t.Fatalf("expected ErrCorruptRecord, got %v", err)
		}
	})
}

func TestFileStore_CustomHash(t *testing.T) {
	store, err := OpenStore("", WithFs(afero.NewMemMapFs()), WithHashFunc(sha256.New))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ThemeKey, "dark"); err != nil {
		t.Fatal(err)
	}
	assertStored(t, store, ThemeKey, "dark")

	if got := len(store.keyHash(ThemeKey)); got != 64 {
		t.Fatalf("expected a sha256 hex name, got %d characters", got)
	}
}

func TestFileStore_WriteFailure(t *testing.T) {
	mockFs := &mockFailingFs{
		fs:              afero.NewMemMapFs(),
		failOnWriteFile: true,
	}

	store, err := OpenStore("", WithFs(mockFs))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Set(ThemeKey, "dark"); err == nil {
		t.Fatal("expected error for write failure, got nil")
	}
	if store.Has(ThemeKey) {
		t.Fatal("failed write should not leave a record")
	}
}

func TestFileStore_OpenFailure(t *testing.T) {
	mockFs := &mockFailingFs{
		fs:             afero.NewMemMapFs(),
		failOnMkdirAll: true,
	}

	if _, err := OpenStore("/data", WithFs(mockFs)); err == nil {
		t.Fatal("expected error for directory creation failure, got nil")
	}
}

func TestFileStore_Stats(t *testing.T) {
	now := fixedNowFunc()
	store, memFs := setupTestStore(t, "abacus-stats", WithNowFunc(func() time.Time { return now }))

	_ = store.Set(HistoryKey, `["2 × 2 = 4"]`)
	now = now.Add(time.Hour)
	_ = store.Set(ThemeKey, "dark")
	now = now.Add(time.Minute)

	stats, err := store.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Records != 2 {
		t.Fatalf("expected 2 records, got %d", stats.Records)
	}
	if stats.OldestWrite != time.Hour+time.Minute {
		t.Fatalf("unexpected oldest write age %v", stats.OldestWrite)
	}
	if stats.NewestWrite != time.Minute {
		t.Fatalf("unexpected newest write age %v", stats.NewestWrite)
	}
	if stats.TotalSize <= 0 {
		t.Fatalf("expected a positive size, got %d", stats.TotalSize)
	}

	// A corrupt record is counted but not listed.
	path := store.recordPath(store.keyHash(ThemeKey))
	_ = afero.WriteFile(memFs, path, []byte("{"), 0o644)

	stats, err = store.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Records != 1 || stats.Corrupt != 1 {
		t.Fatalf("expected 1 good and 1 corrupt record, got %+v", stats)
	}

	infos, err := store.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Key != HistoryKey {
		t.Fatalf("unexpected records %+v", infos)
	}
	if !infos[0].UpdatedAt.Equal(fixedNowFunc()) {
		t.Fatalf("unexpected update time %v", infos[0].UpdatedAt)
	}
}

// setupTestStore creates a new in-memory filesystem and store for testing.
func setupTestStore(t *testing.T, root string, options ...StoreOption) (*FileStore, afero.Fs) {
	t.Helper()

	memFs := afero.NewMemMapFs()
	store, err := OpenStore("/"+root, append([]StoreOption{WithFs(memFs)}, options...)...)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store, memFs
}

// assertStored asserts that key holds value.
func assertStored(t *testing.T, store Store, key, value string) {
	t.Helper()

	got, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get(%s): %v", key, err)
	}
	if got != value {
		t.Fatalf("Get(%s) = %q, want %q", key, got, value)
	}
}

// Mock filesystem that can be configured to fail on specific operations
type mockFailingFs struct {
	fs              afero.Fs
	failOnMkdirAll  bool
	failOnWriteFile bool
	failOnReadFile  bool
}

func (m *mockFailingFs) Create(name string) (afero.File, error) {
	if m.failOnWriteFile {
		return nil, fmt.Errorf("mock Create error")
	}
	return m.fs.Create(name)
}

func (m *mockFailingFs) Mkdir(name string, perm os.FileMode) error {
	return m.fs.Mkdir(name, perm)
}

func (m *mockFailingFs) MkdirAll(path string, perm os.FileMode) error {
	if m.failOnMkdirAll {
		return fmt.Errorf("mock MkdirAll error")
	}
	return m.fs.MkdirAll(path, perm)
}

func (m *mockFailingFs) Open(name string) (afero.File, error) {
	if m.failOnReadFile {
		return nil, fmt.Errorf("mock Open error")
	}
	return m.fs.Open(name)
}

func (m *mockFailingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if m.failOnWriteFile && (flag&os.O_CREATE != 0 || flag&os.O_WRONLY != 0 || flag&os.O_RDWR != 0) {
		return nil, fmt.Errorf("mock OpenFile error")
	}
	return m.fs.OpenFile(name, flag, perm)
}

func (m *mockFailingFs) Remove(name string) error {
	return m.fs.Remove(name)
}

func (m *mockFailingFs) RemoveAll(path string) error {
	return m.fs.RemoveAll(path)
}

func (m *mockFailingFs) Rename(oldname, newname string) error {
	return m.fs.Rename(oldname, newname)
}

func (m *mockFailingFs) Stat(name string) (os.FileInfo, error) {
	return m.fs.Stat(name)
}

func (m *mockFailingFs) Name() string {
	return "mockFailingFs"
}

func (m *mockFailingFs) Chmod(name string, mode os.FileMode) error {
	return m.fs.Chmod(name, mode)
}

func (m *mockFailingFs) Chown(name string, uid, gid int) error {
	return m.fs.Chown(name, uid, gid)
}

func (m *mockFailingFs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return m.fs.Chtimes(name, atime, mtime)
}
