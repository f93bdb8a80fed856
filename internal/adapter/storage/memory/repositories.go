package memory

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct{ s *Store }

func NewUserRepo(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, tx pgx.Tx, u *domain.User) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	r.s.mu.RLock()
	for _, existing := range r.s.users {
		if existing.ID == u.ID || existing.Username == u.Username || existing.Email == u.Email {
			r.s.mu.RUnlock()
			return fmt.Errorf("insert user: duplicate key for %q", u.Username)
		}
	}
	r.s.mu.RUnlock()

	cp := *u
	return mt.stage(func(s *Store) { s.users[cp.ID] = cp })
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id }), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username }), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email }), nil
}

func (r *UserRepo) Delete(_ context.Context, tx pgx.Tx, id string) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if r.find(func(u domain.User) bool { return u.ID == id }) == nil {
		return fmt.Errorf("user not found: %s", id)
	}
	return mt.stage(func(s *Store) { delete(s.users, id) })
}

func (r *UserRepo) find(match func(domain.User) bool) *domain.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := u
			return &cp
		}
	}
	return nil
}

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct{ s *Store }

func NewWalletRepo(s *Store) *WalletRepo { return &WalletRepo{s: s} }

func (r *WalletRepo) Create(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if _, ok := r.s.committedWallet(w.UserID); ok {
		return fmt.Errorf("insert wallet: wallet already exists for %s", w.UserID)
	}
	cp := *w
	if err := mt.stage(func(s *Store) { s.wallets[cp.UserID] = cp }); err != nil {
		return err
	}
	mt.mu.Lock()
	mt.staged[cp.UserID] = &cp
	mt.mu.Unlock()
	return nil
}

func (r *WalletRepo) GetByUserID(_ context.Context, userID string) (*domain.Wallet, error) {
	w, _ := r.s.committedWallet(userID)
	return w, nil
}

// GetByUserIDForUpdate blocks until the wallet lock for userID is free or ctx is done.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}
	if err := mt.lock(ctx, userID); err != nil {
		return nil, err
	}

	mt.mu.Lock()
	staged, ok := mt.staged[userID]
	mt.mu.Unlock()
	if ok {
		if staged == nil {
			return nil, nil
		}
		cp := *staged
		return &cp, nil
	}

	w, _ := r.s.committedWallet(userID)
	return w, nil
}

func (r *WalletRepo) Save(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	mt.mu.Lock()
	staged, inTx := mt.staged[w.UserID]
	mt.mu.Unlock()
	if _, ok := r.s.committedWallet(w.UserID); !ok && (!inTx || staged == nil) {
		return fmt.Errorf("wallet not found: %s", w.ID)
	}

	cp := *w
	if err := mt.stage(func(s *Store) { s.wallets[cp.UserID] = cp }); err != nil {
		return err
	}
	mt.mu.Lock()
	mt.staged[cp.UserID] = &cp
	mt.mu.Unlock()
	return nil
}

func (r *WalletRepo) ExistsByUserID(_ context.Context, userID string) (bool, error) {
	_, ok := r.s.committedWallet(userID)
	return ok, nil
}

func (r *WalletRepo) DeleteByUserID(_ context.Context, tx pgx.Tx, userID string) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.stage(func(s *Store) { delete(s.wallets, userID) }); err != nil {
		return err
	}
	mt.mu.Lock()
	mt.staged[userID] = nil
	mt.mu.Unlock()
	return nil
}

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct{ s *Store }

func NewTransactionRepo(s *Store) *TransactionRepo { return &TransactionRepo{s: s} }

func (r *TransactionRepo) Create(_ context.Context, tx pgx.Tx, rec *domain.TransactionRecord) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	cp := *rec
	return mt.stage(func(s *Store) { s.txns[cp.UserID] = append(s.txns[cp.UserID], cp) })
}

func (r *TransactionRepo) ListByUserID(_ context.Context, userID string, pageNo, size int) ([]domain.TransactionRecord, error) {
	return page(r.sorted(userID), pageNo, size), nil
}

func (r *TransactionRepo) ListByUserIDBetween(_ context.Context, userID string, start, end time.Time) ([]domain.TransactionRecord, error) {
	out := []domain.TransactionRecord{}
	for _, t := range r.sorted(userID) {
		if !t.Timestamp.Before(start) && !t.Timestamp.After(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TransactionRepo) sorted(userID string) []domain.TransactionRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return newestFirst(r.s.txns[userID], func(t domain.TransactionRecord) int64 { return t.Timestamp.UnixNano() })
}

// CashbackRepo implements ports.CashbackRepository.
type CashbackRepo struct{ s *Store }

func NewCashbackRepo(s *Store) *CashbackRepo { return &CashbackRepo{s: s} }

func (r *CashbackRepo) Create(_ context.Context, tx pgx.Tx, rec *domain.CashbackRecord) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	cp := *rec
	return mt.stage(func(s *Store) { s.cashbacks[cp.UserID] = append(s.cashbacks[cp.UserID], cp) })
}

func (r *CashbackRepo) ListByUserID(_ context.Context, userID string) ([]domain.CashbackRecord, error) {
	return r.sorted(userID), nil
}

func (r *CashbackRepo) ListByUserIDPage(_ context.Context, userID string, pageNo, size int) ([]domain.CashbackRecord, error) {
	return page(r.sorted(userID), pageNo, size), nil
}

func (r *CashbackRepo) ListByUserIDBetween(_ context.Context, userID string, start, end time.Time) ([]domain.CashbackRecord, error) {
	out := []domain.CashbackRecord{}
	for _, c := range r.sorted(userID) {
		if !c.Timestamp.Before(start) && !c.Timestamp.After(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CashbackRepo) sorted(userID string) []domain.CashbackRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return newestFirst(r.s.cashbacks[userID], func(c domain.CashbackRecord) int64 { return c.Timestamp.UnixNano() })
}

// HealthCheck implements ports.HealthChecker for the in-process store.
type HealthCheck struct{}

func (HealthCheck) Ping(context.Context) error { return nil }
func (HealthCheck) Name() string               { return "memory" }
