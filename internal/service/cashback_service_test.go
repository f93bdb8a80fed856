package service

import (
	"context"
	"errors"
	"testing"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type cashbackTestDeps struct {
	svc          *CashbackServiceImpl
	walletRepo   *mocks.MockWalletRepository
	cashbackRepo *mocks.MockCashbackRepository
	transactor   *mocks.MockDBTransactor
	metrics      *recordingMetrics
}

func setupCashbackService(t *testing.T, rate decimal.Decimal) *cashbackTestDeps {
	ctrl := gomock.NewController(t)
	d := &cashbackTestDeps{
		walletRepo:   mocks.NewMockWalletRepository(ctrl),
		cashbackRepo: mocks.NewMockCashbackRepository(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		metrics:      newRecordingMetrics(),
	}
	d.svc = NewCashbackService(d.walletRepo, d.cashbackRepo, d.transactor, rate, d.metrics, zerolog.Nop())
	return d
}

func TestCashbackService_ApplyCashback(t *testing.T) {
	tests := []struct {
		recharge string
		cashback string
	}{
		{"100", "5"},
		{"10", "0.5"},
		{"33.33", "1.6665"},
		{"0.0011", "0.0001"},
		{"12.3457", "0.6173"},
	}

	for _, tt := range tests {
		t.Run(tt.recharge, func(t *testing.T) {
			d := setupCashbackService(t, domain.DefaultCashbackRate)
			ctx := context.Background()
			tx := &mockTx{}
			wallet := walletWith("alice", "100")

			d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
			d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "alice").Return(wallet, nil)
			d.walletRepo.EXPECT().Save(ctx, tx, wallet).Return(nil)
			d.cashbackRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

			rec, err := d.svc.ApplyCashback(ctx, "alice", dec(tt.recharge))
			require.NoError(t, err)
			assert.True(t, rec.Amount.Equal(dec(tt.cashback)), rec.Amount.String())
			assert.True(t, wallet.Balance.Equal(dec("100").Add(dec(tt.cashback))))
			assert.Equal(t, []string{"cashback:success"}, d.metrics.ops)
		})
	}
}

func TestCashbackService_ApplyCashback_ZeroRateRecordsNothing(t *testing.T) {
	d := setupCashbackService(t, decimal.Zero)
	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "alice").Return(walletWith("alice", "0"), nil)

	rec, err := d.svc.ApplyCashback(ctx, "alice", dec("100"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCashbackService_ApplyCashback_RoundsToZeroRecordsNothing(t *testing.T) {
	d := setupCashbackService(t, domain.DefaultCashbackRate)
	ctx := context.Background()
	tx := &mockTx{}
	wallet := walletWith("alice", "1")

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "alice").Return(wallet, nil)

	rec, err := d.svc.ApplyCashback(ctx, "alice", dec("0.0009"))
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.True(t, wallet.Balance.Equal(dec("1")))
}

func TestCashbackService_ApplyCashback_Errors(t *testing.T) {
	t.Run("invalid amount", func(t *testing.T) {
		d := setupCashbackService(t, domain.DefaultCashbackRate)
		for _, amt := range []string{"0", "0.00001"} {
			_, err := d.svc.ApplyCashback(context.Background(), "alice", dec(amt))
			assertAppError(t, err, apperror.CodeInvalidAmount)
		}
	})

	t.Run("wallet not found", func(t *testing.T) {
		d := setupCashbackService(t, domain.DefaultCashbackRate)
		ctx := context.Background()
		tx := &mockTx{}
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
		d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "ghost").Return(nil, nil)

		_, err := d.svc.ApplyCashback(ctx, "ghost", dec("10"))
		assertAppError(t, err, apperror.CodeWalletNotFound)
	})

	t.Run("record insert fails", func(t *testing.T) {
		d := setupCashbackService(t, domain.DefaultCashbackRate)
		ctx := context.Background()
		tx := &mockTx{}
		wallet := walletWith("alice", "0")
		d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
		d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, "alice").Return(wallet, nil)
		d.walletRepo.EXPECT().Save(ctx, tx, wallet).Return(nil)
		d.cashbackRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(errors.New("constraint"))

		_, err := d.svc.ApplyCashback(ctx, "alice", dec("10"))
		assertAppError(t, err, "SYS_001")
		assert.Equal(t, []string{"cashback:error"}, d.metrics.ops)
	})
}

func TestCashbackService_GetCashbackHistory(t *testing.T) {
	d := setupCashbackService(t, domain.DefaultCashbackRate)
	ctx := context.Background()
	records := []domain.CashbackRecord{{UserID: "alice", Amount: dec("5")}}

	d.walletRepo.EXPECT().ExistsByUserID(ctx, "alice").Return(true, nil)
	d.cashbackRepo.EXPECT().ListByUserID(ctx, "alice").Return(records, nil)

	got, err := d.svc.GetCashbackHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestCashbackService_GetCashbackHistory_EmptyAndUnknown(t *testing.T) {
	d := setupCashbackService(t, domain.DefaultCashbackRate)
	ctx := context.Background()

	d.walletRepo.EXPECT().ExistsByUserID(ctx, "fresh").Return(true, nil)
	d.cashbackRepo.EXPECT().ListByUserID(ctx, "fresh").Return(nil, nil)
	d.walletRepo.EXPECT().ExistsByUserID(ctx, "ghost").Return(false, nil)

	got, err := d.svc.GetCashbackHistory(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = d.svc.GetCashbackHistory(ctx, "ghost")
	assertAppError(t, err, apperror.CodeWalletNotFound)
}
