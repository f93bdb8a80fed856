// Package memory is a process-local implementation of the storage ports.
// Wallet locks taken through GetByUserIDForUpdate are held until the owning
// Tx commits or rolls back, mirroring SELECT ... FOR UPDATE.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ErrForeignTx is returned when a repository receives a pgx.Tx that was not
// created by the same Store.
var ErrForeignTx = errors.New("memory: transaction does not belong to this store")

// Store holds all committed state.
type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	wallets   map[string]domain.Wallet // keyed by user id
	txns      map[string][]domain.TransactionRecord
	cashbacks map[string][]domain.CashbackRecord

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		wallets:   make(map[string]domain.Wallet),
		txns:      make(map[string][]domain.TransactionRecord),
		cashbacks: make(map[string][]domain.CashbackRecord),
		locks:     make(map[string]chan struct{}),
	}
}

// Begin implements ports.DBTransactor.
func (s *Store) Begin(_ context.Context) (pgx.Tx, error) {
	return &Tx{store: s, held: make(map[string]chan struct{}), staged: make(map[string]*domain.Wallet)}, nil
}

func (s *Store) walletLock(userID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[userID] = l
	}
	return l
}

func (s *Store) committedWallet(userID string) (*domain.Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[userID]
	if !ok {
		return nil, false
	}
	return &w, true
}

// Tx stages writes and applies them atomically on Commit.
// Only Commit and Rollback are supported of the pgx.Tx surface.
type Tx struct {
	pgx.Tx

	store  *Store
	mu     sync.Mutex
	held   map[string]chan struct{}
	staged map[string]*domain.Wallet // wallets written or deleted (nil) in this tx
	ops    []func(*Store)
	done   bool
}

func asTx(s *Store, tx pgx.Tx) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt.store != s {
		return nil, ErrForeignTx
	}
	return mt, nil
}

// lock acquires the wallet lock for userID unless this tx already holds it.
func (t *Tx) lock(ctx context.Context, userID string) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return pgx.ErrTxClosed
	}
	if _, ok := t.held[userID]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	l := t.store.walletLock(userID)
	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("acquire wallet lock: %w", ctx.Err())
	}

	t.mu.Lock()
	t.held[userID] = l
	t.mu.Unlock()
	return nil
}

func (t *Tx) stage(op func(*Store)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.ops = append(t.ops, op)
	return nil
}

// Commit applies staged writes and releases held wallet locks.
func (t *Tx) Commit(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true

	t.store.mu.Lock()
	for _, op := range t.ops {
		op(t.store)
	}
	t.store.mu.Unlock()

	t.release()
	return nil
}

// Rollback discards staged writes and releases held wallet locks.
func (t *Tx) Rollback(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.ops = nil
	t.release()
	return nil
}

func (t *Tx) release() {
	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
}

// page returns the zero-based page of items, which must already be ordered.
func page[T any](items []T, pageNo, size int) []T {
	out := []T{}
	if size <= 0 || pageNo < 0 {
		return out
	}
	start := pageNo * size
	if start >= len(items) {
		return out
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return append(out, items[start:end]...)
}

// newestFirst orders a copy of items by timestamp descending; among equal
// timestamps the most recently appended item comes first.
func newestFirst[T any](items []T, ts func(T) int64) []T {
	out := make([]T, len(items))
	for i := range items {
		out[len(items)-1-i] = items[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return ts(out[i]) > ts(out[j]) })
	return out
}
