package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vladimiradmaev/nutriscan/internal/domain"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

const (
	// HistoryKey is the fixed key holding the JSON array of entries.
	HistoryKey = "nutriscan_history"
	// MaxHistoryEntries bounds the log; older entries are evicted.
	MaxHistoryEntries = 20
)

// HistoryRepository is the bounded, newest-first history log. The in-memory
// copy is authoritative for reads; every append is written through.
type HistoryRepository struct {
	store   storage.Store
	logger  *slog.Logger
	entries []domain.HistoryEntry
	mu      sync.RWMutex
}

// NewHistoryRepository creates a history repository over store
func NewHistoryRepository(store storage.Store, logger *slog.Logger) *HistoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryRepository{store: store, logger: logger}
}

// Load reads the persisted history. A missing or corrupt value leaves the
// history empty; only a failing backend is reported.
func (r *HistoryRepository) Load(ctx context.Context) error {
	raw, found, err := r.store.Get(ctx, HistoryKey)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	var entries []domain.HistoryEntry
	if found && raw != "" {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			r.logger.Warn("Stored history is corrupt, starting empty", "error", err)
			entries = nil
		}
	}
	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

// Append prepends entry, truncates to MaxHistoryEntries and persists. The
// in-memory log is updated even when persisting fails.
func (r *HistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	r.mu.Lock()
	next := make([]domain.HistoryEntry, 0, MaxHistoryEntries)
	next = append(next, entry.Clone())
	next = append(next, r.entries...)
	if len(next) > MaxHistoryEntries {
		next = next[:MaxHistoryEntries]
	}
	r.entries = next
	data, err := json.Marshal(next)
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := r.store.Set(ctx, HistoryKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

// All returns a copy of every entry, newest first
func (r *HistoryRepository) All() []domain.HistoryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneEntries(r.entries)
}

// Find returns the entry with the given ID
func (r *HistoryRepository) Find(id string) (domain.HistoryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return domain.HistoryEntry{}, false
}

// Since returns the entries captured strictly after t, newest first
func (r *HistoryRepository) Since(t time.Time) []domain.HistoryEntry {
	cutoff := t.UnixMilli()

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.HistoryEntry
	for _, e := range r.entries {
		if e.Timestamp > cutoff {
			out = append(out, e.Clone())
		}
	}
	return out
}

func cloneEntries(entries []domain.HistoryEntry) []domain.HistoryEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]domain.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
