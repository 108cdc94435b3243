package abacus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// HistoryLimit is the number of entries kept.
const HistoryLimit = 50

// resultSeparator splits an entry into expression and result.
const resultSeparator = " = "

// History is the log of completed calculations, most recent first.
// Every mutation is mirrored to the store under HistoryKey. A failed write
// is reported but never undone: the in-memory log stays authoritative.
type History struct {
	mu      sync.RWMutex
	store   Store
	entries []string
}

// NewHistory returns an empty history persisted to store.
func NewHistory(store Store) *History {
	return &History{store: store}
}

// Load replaces the in-memory log with the persisted one.
// A missing or undecodable value leaves the log empty; ErrNotFound is not
// reported, other read errors are returned after the log is emptied.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	raw, err := h.store.Get(HistoryKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return fmt.Errorf("failed to decode history: %w", err)
	}
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}
	h.entries = entries
	return nil
}

// Append adds entry as the most recent one, dropping the oldest beyond
// HistoryLimit, and persists the log.
func (h *History) Append(entry string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := make([]string, 0, min(len(h.entries)+1, HistoryLimit))
	entries = append(entries, entry)
	entries = append(entries, h.entries...)
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}
	h.entries = entries

	return h.save()
}

// Clear empties the log and persists it.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	return h.save()
}

// Entries returns a copy of the log, most recent first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Select returns the result part of the entry at index.
func (h *History) Select(index int) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if index < 0 || index >= len(h.entries) {
		return "", fmt.Errorf("%w: index %d of %d", ErrEntryNotFound, index, len(h.entries))
	}
	return EntryResult(h.entries[index])
}

// EntryResult extracts the result from an entry such as "2 + 3 = 5".
func EntryResult(entry string) (string, error) {
	parts := strings.Split(entry, resultSeparator)
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedEntry, entry)
	}
	return parts[1], nil
}

// save must be called with the lock held.
func (h *History) save() error {
	entries := h.entries
	if entries == nil {
		entries = []string{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := h.store.Set(HistoryKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}
