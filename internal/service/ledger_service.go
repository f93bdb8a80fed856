package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultNotifyTimeout = 3 * time.Second

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	walletRepo    ports.WalletRepository
	txRepo        ports.TransactionRepository
	cashbackRepo  ports.CashbackRepository
	userRepo      ports.UserRepository
	transactor    ports.DBTransactor
	cashback      ports.CashbackService
	notifier      ports.Notifier
	metrics       ports.LedgerMetrics
	log           zerolog.Logger
	notifyTimeout time.Duration
	now           func() time.Time

	pending sync.WaitGroup
}

// LedgerOption customizes a LedgerServiceImpl.
type LedgerOption func(*LedgerServiceImpl)

// WithNotifyTimeout bounds each notification delivery.
func WithNotifyTimeout(d time.Duration) LedgerOption {
	return func(s *LedgerServiceImpl) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerServiceImpl) { s.now = now }
}

// NewLedgerService creates a new LedgerServiceImpl. notifier and metrics may be nil.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	cashbackRepo ports.CashbackRepository,
	userRepo ports.UserRepository,
	transactor ports.DBTransactor,
	cashback ports.CashbackService,
	notifier ports.Notifier,
	metrics ports.LedgerMetrics,
	log zerolog.Logger,
	opts ...LedgerOption,
) *LedgerServiceImpl {
	s := &LedgerServiceImpl{
		walletRepo:    walletRepo,
		txRepo:        txRepo,
		cashbackRepo:  cashbackRepo,
		userRepo:      userRepo,
		transactor:    transactor,
		cashback:      cashback,
		notifier:      notifier,
		metrics:       metricsOrNop(metrics),
		log:           log,
		notifyTimeout: defaultNotifyTimeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recharge adds amount to the user's wallet and records a RECHARGE entry.
// Cashback and notification run after commit; their failures are logged
// and never undo or fail the recharge.
func (s *LedgerServiceImpl) Recharge(ctx context.Context, userID string, amount decimal.Decimal) (*domain.TransactionRecord, error) {
	rec, err := s.recharge(ctx, userID, amount)
	s.metrics.ObserveOperation("recharge", outcomeOf(err))
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAmount("recharge", amount)

	if s.cashback != nil {
		if _, err := s.cashback.ApplyCashback(ctx, userID, amount); err != nil {
			s.dependentFailed("cashback", userID, err)
		}
	}

	s.notify(ctx, userID, domain.NotificationRecharge, amount,
		"Wallet recharged",
		fmt.Sprintf("Your wallet was recharged with %s.", amount.String()))

	return rec, nil
}

func (s *LedgerServiceImpl) recharge(ctx context.Context, userID string, amount decimal.Decimal) (*domain.TransactionRecord, error) {
	if !domain.ValidAmount(amount) {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, lockError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(userID)
	}

	now := s.now()
	wallet.Credit(amount, now)
	if err := s.walletRepo.Save(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	rec := domain.NewRechargeRecord(wallet, amount, now)
	if err := s.txRepo.Create(ctx, dbTx, &rec); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", rec.ID.String()).
		Str("user_id", userID).
		Str("amount", amount.String()).
		Msg("recharge processed")

	return &rec, nil
}

// Transfer moves amount from sender to recipient. Both wallets are locked in
// ascending user id order so concurrent opposite transfers cannot deadlock.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) ([]domain.TransactionRecord, error) {
	recs, err := s.transfer(ctx, senderID, recipientID, amount)
	s.metrics.ObserveOperation("transfer", outcomeOf(err))
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAmount("transfer", amount)

	s.notify(ctx, recipientID, domain.NotificationTransferReceived, amount,
		"Money received",
		fmt.Sprintf("You received %s from %s.", amount.String(), senderID))

	return recs, nil
}

func (s *LedgerServiceImpl) transfer(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) ([]domain.TransactionRecord, error) {
	if !domain.ValidAmount(amount) {
		return nil, apperror.ErrInvalidAmount()
	}
	if senderID == recipientID {
		return nil, apperror.ErrSelfTransfer()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	firstID, secondID := senderID, recipientID
	if recipientID < senderID {
		firstID, secondID = recipientID, senderID
	}
	locked := make(map[string]*domain.Wallet, 2)
	for _, id := range []string{firstID, secondID} {
		w, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, lockError(fmt.Errorf("lock wallet %s: %w", id, err))
		}
		locked[id] = w
	}

	sender, recipient := locked[senderID], locked[recipientID]
	if sender == nil {
		return nil, apperror.ErrWalletNotFound(senderID)
	}
	if recipient == nil {
		return nil, apperror.ErrWalletNotFound(recipientID)
	}

	if !sender.CanDebit(amount) {
		return nil, apperror.ErrInsufficientBalance(amount.String(), sender.Balance.String())
	}

	now := s.now()
	sender.Debit(amount, now)
	recipient.Credit(amount, now)

	if err := s.walletRepo.Save(ctx, dbTx, sender); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update sender balance: %w", err))
	}
	if err := s.walletRepo.Save(ctx, dbTx, recipient); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update recipient balance: %w", err))
	}

	out, in := domain.NewTransferRecords(sender, recipient, amount, now)
	if err := s.txRepo.Create(ctx, dbTx, &out); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create sender record: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, &in); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create recipient record: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("sender_id", senderID).
		Str("recipient_id", recipientID).
		Str("amount", amount.String()).
		Msg("transfer processed")

	return []domain.TransactionRecord{out, in}, nil
}

// GetBalance returns the committed balance of the user's wallet.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, apperror.ErrWalletNotFound(userID)
	}
	return wallet.Balance, nil
}

// GetStatement pages transactions and cashbacks independently with the same
// page and size, then merges them. The merged slice may hold up to 2*size
// items and is not a global page boundary across both sources.
func (s *LedgerServiceImpl) GetStatement(ctx context.Context, userID string, page, size int) ([]domain.HistoryItem, error) {
	if page < 0 {
		return nil, apperror.ErrInvalidArgument("page must not be negative")
	}
	if size <= 0 {
		return nil, apperror.ErrInvalidArgument("size must be greater than zero")
	}

	txns, err := s.txRepo.ListByUserID(ctx, userID, page, size)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	cashbacks, err := s.cashbackRepo.ListByUserIDPage(ctx, userID, page, size)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list cashbacks: %w", err))
	}

	return domain.MergeHistory(txns, cashbacks), nil
}

// Wait blocks until in-flight notifications finish.
func (s *LedgerServiceImpl) Wait() {
	s.pending.Wait()
}

func (s *LedgerServiceImpl) dependentFailed(step, userID string, err error) {
	s.metrics.DependentFailure(step)
	depErr := apperror.ErrDependentOperationFailed(step, err)
	s.log.Warn().
		Err(depErr).
		Str("error_code", depErr.Code).
		Str("step", step).
		Str("user_id", userID).
		Msg("dependent operation failed")
}

// notify delivers in the background with a context detached from the request.
func (s *LedgerServiceImpl) notify(ctx context.Context, userID string, event domain.NotificationEvent, amount decimal.Decimal, subject, body string) {
	if s.notifier == nil {
		return
	}

	bg := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		nctx, cancel := context.WithTimeout(bg, s.notifyTimeout)
		defer cancel()

		n := domain.Notification{
			UserID:    userID,
			Event:     event,
			Subject:   subject,
			Body:      body,
			Amount:    amount,
			CreatedAt: s.now(),
		}
		if s.userRepo != nil {
			user, err := s.userRepo.GetByID(nctx, userID)
			if err != nil {
				s.dependentFailed("notify", userID, fmt.Errorf("load user: %w", err))
				return
			}
			if user != nil {
				n.Email = user.Email
			}
		}

		if err := s.notifier.Notify(nctx, n); err != nil {
			s.dependentFailed("notify", userID, err)
		}
	}()
}
