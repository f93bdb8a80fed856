package service

import (
	"sync"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"
)

// SessionHistory implements ports.SessionHistoryService. Entries live for the
// process lifetime and are never persisted.
type SessionHistory struct {
	mu      sync.RWMutex
	entries map[string][]domain.SessionEntry
}

// NewSessionHistory creates an empty SessionHistory.
func NewSessionHistory() *SessionHistory {
	return &SessionHistory{entries: make(map[string][]domain.SessionEntry)}
}

// Add appends entries to the user's history in order.
func (h *SessionHistory) Add(userID string, entries []domain.SessionEntry) error {
	if entries == nil {
		return apperror.ErrInvalidArgument("entries must not be null")
	}
	if len(entries) == 0 {
		return nil
	}

	copied := make([]domain.SessionEntry, len(entries))
	for i, e := range entries {
		copied[i] = cloneEntry(e)
	}

	h.mu.Lock()
	h.entries[userID] = append(h.entries[userID], copied...)
	h.mu.Unlock()
	return nil
}

// Get returns a snapshot of the user's history. Unknown users get an empty slice.
func (h *SessionHistory) Get(userID string) []domain.SessionEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	src := h.entries[userID]
	out := make([]domain.SessionEntry, len(src))
	for i, e := range src {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e domain.SessionEntry) domain.SessionEntry {
	if e == nil {
		return nil
	}
	cp := make(domain.SessionEntry, len(e))
	for k, v := range e {
		cp[k] = v
	}
	return cp
}
