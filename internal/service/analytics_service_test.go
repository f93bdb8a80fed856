package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAnalyticsService_GetCombinedHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	cbRepo := mocks.NewMockCashbackRepository(ctrl)
	svc := NewAnalyticsService(txRepo, cbRepo)

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	t10 := start.Add(10 * time.Hour)
	t11 := start.Add(11 * time.Hour)

	txRepo.EXPECT().ListByUserIDBetween(ctx, "alice", start, end).Return([]domain.TransactionRecord{
		{UserID: "alice", Type: domain.TransactionTypeRecharge, Amount: dec("100"), Timestamp: t10},
		{UserID: "alice", Type: domain.TransactionTypeTransfer, Amount: dec("20"), Timestamp: t11},
	}, nil)
	cbRepo.EXPECT().ListByUserIDBetween(ctx, "alice", start, end).Return([]domain.CashbackRecord{
		{UserID: "alice", Amount: dec("5"), Timestamp: t10},
	}, nil)

	items, err := svc.GetCombinedHistory(ctx, "alice", start, end)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, t11, items[0].Timestamp())
	assert.Equal(t, domain.HistoryKindCashback, items[1].Kind)
	assert.Equal(t, domain.HistoryKindTransaction, items[2].Kind)
	assert.Equal(t, t10, items[2].Timestamp())
}

func TestAnalyticsService_GetCombinedHistory_StartAfterEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewAnalyticsService(mocks.NewMockTransactionRepository(ctrl), mocks.NewMockCashbackRepository(ctrl))

	now := time.Now()
	_, err := svc.GetCombinedHistory(context.Background(), "alice", now, now.Add(-time.Second))
	assertAppError(t, err, apperror.CodeInvalidArgument)
}

func TestAnalyticsService_GetCombinedHistory_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	svc := NewAnalyticsService(txRepo, mocks.NewMockCashbackRepository(ctrl))

	ctx := context.Background()
	now := time.Now()
	txRepo.EXPECT().ListByUserIDBetween(ctx, "alice", now, now).Return(nil, errors.New("timeout"))

	_, err := svc.GetCombinedHistory(ctx, "alice", now, now)
	assertAppError(t, err, "SYS_001")
}
