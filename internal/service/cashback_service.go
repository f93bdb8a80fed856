package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CashbackServiceImpl implements ports.CashbackService.
type CashbackServiceImpl struct {
	walletRepo   ports.WalletRepository
	cashbackRepo ports.CashbackRepository
	transactor   ports.DBTransactor
	rate         decimal.Decimal
	metrics      ports.LedgerMetrics
	log          zerolog.Logger
	now          func() time.Time
}

// NewCashbackService creates a new CashbackServiceImpl crediting rate of every recharge.
func NewCashbackService(
	walletRepo ports.WalletRepository,
	cashbackRepo ports.CashbackRepository,
	transactor ports.DBTransactor,
	rate decimal.Decimal,
	metrics ports.LedgerMetrics,
	log zerolog.Logger,
) *CashbackServiceImpl {
	return &CashbackServiceImpl{
		walletRepo:   walletRepo,
		cashbackRepo: cashbackRepo,
		transactor:   transactor,
		rate:         rate,
		metrics:      metricsOrNop(metrics),
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ApplyCashback credits rechargeAmount*rate to the user's wallet in its own
// transaction. A zero rate records nothing and returns (nil, nil).
func (s *CashbackServiceImpl) ApplyCashback(ctx context.Context, userID string, rechargeAmount decimal.Decimal) (*domain.CashbackRecord, error) {
	rec, err := s.applyCashback(ctx, userID, rechargeAmount)
	s.metrics.ObserveOperation("cashback", outcomeOf(err))
	return rec, err
}

func (s *CashbackServiceImpl) applyCashback(ctx context.Context, userID string, rechargeAmount decimal.Decimal) (*domain.CashbackRecord, error) {
	if !domain.ValidAmount(rechargeAmount) {
		return nil, apperror.ErrInvalidAmount()
	}

	cashback := domain.ComputeCashback(rechargeAmount, s.rate)

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
	if !cashback.IsPositive() {
		return nil, nil
	}

	now := s.now()
	wallet.Credit(cashback, now)
	if err := s.walletRepo.Save(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	rec := domain.NewCashbackRecord(userID, cashback, now)
	if err := s.cashbackRepo.Create(ctx, dbTx, &rec); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create cashback: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.metrics.ObserveAmount("cashback", cashback)
	s.log.Info().
		Str("cashback_id", rec.ID.String()).
		Str("user_id", userID).
		Str("amount", cashback.String()).
		Msg("cashback applied")

	return &rec, nil
}

// GetCashbackHistory lists the user's cashbacks, newest first.
func (s *CashbackServiceImpl) GetCashbackHistory(ctx context.Context, userID string) ([]domain.CashbackRecord, error) {
	exists, err := s.walletRepo.ExistsByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check wallet: %w", err))
	}
	if !exists {
		return nil, apperror.ErrWalletNotFound(userID)
	}

	records, err := s.cashbackRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list cashbacks: %w", err))
	}
	if records == nil {
		records = []domain.CashbackRecord{}
	}
	return records, nil
}
