package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
)

// AnalyticsServiceImpl implements ports.AnalyticsService.
type AnalyticsServiceImpl struct {
	txRepo       ports.TransactionRepository
	cashbackRepo ports.CashbackRepository
}

// NewAnalyticsService creates a new AnalyticsServiceImpl.
func NewAnalyticsService(txRepo ports.TransactionRepository, cashbackRepo ports.CashbackRepository) *AnalyticsServiceImpl {
	return &AnalyticsServiceImpl{
		txRepo:       txRepo,
		cashbackRepo: cashbackRepo,
	}
}

// GetCombinedHistory returns every transaction and cashback of the user with
// start <= timestamp <= end, newest first. Unknown users get an empty list.
func (s *AnalyticsServiceImpl) GetCombinedHistory(ctx context.Context, userID string, start, end time.Time) ([]domain.HistoryItem, error) {
	if start.After(end) {
		return nil, apperror.ErrInvalidArgument("start must not be after end")
	}

	txns, err := s.txRepo.ListByUserIDBetween(ctx, userID, start, end)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	cashbacks, err := s.cashbackRepo.ListByUserIDBetween(ctx, userID, start, end)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list cashbacks: %w", err))
	}

	return domain.MergeHistory(txns, cashbacks), nil
}
