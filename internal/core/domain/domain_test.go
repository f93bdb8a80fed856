package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestWallet_CreditDebit(t *testing.T) {
	w := NewWallet("alice")
	assert.True(t, w.Balance.IsZero())
	assert.NotEqual(t, uuid.Nil, w.ID)

	now := time.Now().UTC()
	w.Credit(d("100.55"), now)
	assert.Equal(t, "100.55", w.Balance.String())

	assert.False(t, w.Debit(d("200"), now))
	assert.Equal(t, "100.55", w.Balance.String(), "failed debit leaves balance untouched")

	assert.True(t, w.Debit(d("100.55"), now))
	assert.True(t, w.Balance.IsZero(), "exact balance debit leaves zero")
}

func TestNewRechargeRecord(t *testing.T) {
	w := NewWallet("alice")
	rec := NewRechargeRecord(w, d("50"), time.Now())

	assert.Equal(t, TransactionTypeRecharge, rec.Type)
	assert.Equal(t, "alice", rec.UserID)
	assert.Equal(t, w.ID, rec.WalletID)
	require.NotNil(t, rec.RecipientID)
	assert.Equal(t, SelfRecipient, *rec.RecipientID)
	assert.Nil(t, rec.SenderID)
}

func TestNewTransferRecords(t *testing.T) {
	sender, recipient := NewWallet("alice"), NewWallet("bob")
	ts := time.Now()
	out, in := NewTransferRecords(sender, recipient, d("25"), ts)

	assert.Equal(t, "alice", out.UserID)
	assert.Equal(t, sender.ID, out.WalletID)
	require.NotNil(t, out.RecipientID)
	assert.Equal(t, "bob", *out.RecipientID)
	assert.Nil(t, out.SenderID)

	assert.Equal(t, "bob", in.UserID)
	assert.Equal(t, recipient.ID, in.WalletID)
	require.NotNil(t, in.SenderID)
	assert.Equal(t, "alice", *in.SenderID)
	assert.Nil(t, in.RecipientID)

	assert.Equal(t, ts, out.Timestamp)
	assert.Equal(t, ts, in.Timestamp)
	assert.NotEqual(t, out.ID, in.ID)
}

func TestComputeCashback(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"100", "5"},
		{"100.55", "5.0275"},
		{"1", "0.05"},
		{"33.33", "1.6665"},
		{"0.0011", "0.0001"},
		{"0.0009", "0"},
		{"1.0001", "0.05"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := ComputeCashback(d(tt.amount), DefaultCashbackRate)
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"100", true},
		{"0.0001", true},
		{"1.50000", true},
		{"0.00001", false},
		{"1.00004", false},
		{"0", false},
		{"-5", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAmount(d(tt.amount)))
		})
	}
}

func TestMergeHistory_WorkedExample(t *testing.T) {
	txns := []TransactionRecord{
		{ID: uuid.New(), Amount: d("10"), Timestamp: at("2023-06-01T11:00:00Z")},
		{ID: uuid.New(), Amount: d("20"), Timestamp: at("2023-07-01T12:00:00Z")},
	}
	cbs := []CashbackRecord{
		{ID: uuid.New(), Amount: d("0.5"), Timestamp: at("2023-06-01T11:00:00Z")},
		{ID: uuid.New(), Amount: d("1"), Timestamp: at("2023-08-01T13:00:00Z")},
	}

	got := MergeHistory(txns, cbs)
	require.Len(t, got, 4)

	assert.Equal(t, HistoryKindCashback, got[0].Kind)
	assert.Equal(t, cbs[1].ID, got[0].Cashback.ID)
	assert.Equal(t, HistoryKindTransaction, got[1].Kind)
	assert.Equal(t, txns[1].ID, got[1].Transaction.ID)
	assert.Equal(t, HistoryKindCashback, got[2].Kind)
	assert.Equal(t, cbs[0].ID, got[2].Cashback.ID)
	assert.Equal(t, HistoryKindTransaction, got[3].Kind)
	assert.Equal(t, txns[0].ID, got[3].Transaction.ID)
}

func TestMergeHistory_TiesKeepInputOrderWithinKind(t *testing.T) {
	ts := at("2024-01-01T00:00:00Z")
	txns := []TransactionRecord{
		{ID: uuid.New(), Timestamp: ts},
		{ID: uuid.New(), Timestamp: ts},
	}
	cbs := []CashbackRecord{
		{ID: uuid.New(), Timestamp: ts},
		{ID: uuid.New(), Timestamp: ts},
	}

	got := MergeHistory(txns, cbs)
	require.Len(t, got, 4)
	assert.Equal(t, cbs[0].ID, got[0].Cashback.ID)
	assert.Equal(t, cbs[1].ID, got[1].Cashback.ID)
	assert.Equal(t, txns[0].ID, got[2].Transaction.ID)
	assert.Equal(t, txns[1].ID, got[3].Transaction.ID)
}

func TestMergeHistory_Empty(t *testing.T) {
	got := MergeHistory(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMergeHistory_IsNonIncreasing(t *testing.T) {
	base := at("2024-03-01T00:00:00Z")
	var txns []TransactionRecord
	var cbs []CashbackRecord
	for i := 0; i < 20; i++ {
		txns = append(txns, TransactionRecord{ID: uuid.New(), Timestamp: base.Add(time.Duration(i*7%11) * time.Hour)})
		cbs = append(cbs, CashbackRecord{ID: uuid.New(), Timestamp: base.Add(time.Duration(i*5%13) * time.Hour)})
	}

	got := MergeHistory(txns, cbs)
	require.Len(t, got, 40)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		assert.False(t, cur.Timestamp().After(prev.Timestamp()), "index %d out of order", i)
		if cur.Timestamp().Equal(prev.Timestamp()) {
			assert.False(t, prev.Kind == HistoryKindTransaction && cur.Kind == HistoryKindCashback,
				"transaction before cashback on tie at index %d", i)
		}
	}
}

func TestHistoryItem_Timestamp(t *testing.T) {
	ts := at("2024-05-05T05:05:05Z")
	assert.Equal(t, ts, HistoryItem{Kind: HistoryKindCashback, Cashback: &CashbackRecord{Timestamp: ts}}.Timestamp())
	assert.Equal(t, ts, HistoryItem{Kind: HistoryKindTransaction, Transaction: &TransactionRecord{Timestamp: ts}}.Timestamp())
	assert.True(t, HistoryItem{}.Timestamp().IsZero())
}

func TestTransactionType_Constants(t *testing.T) {
	assert.Equal(t, TransactionType("RECHARGE"), TransactionTypeRecharge)
	assert.Equal(t, TransactionType("TRANSFER"), TransactionTypeTransfer)
	assert.Equal(t, "self", SelfRecipient)
}
