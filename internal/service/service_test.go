package service

import (
	"context"
	"testing"

	"wallet-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// recordingMetrics captures LedgerMetrics calls.
type recordingMetrics struct {
	ops        []string
	amounts    map[string]decimal.Decimal
	dependents []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{amounts: make(map[string]decimal.Decimal)}
}

func (m *recordingMetrics) ObserveOperation(op, outcome string) {
	m.ops = append(m.ops, op+":"+outcome)
}

func (m *recordingMetrics) ObserveAmount(op string, amount decimal.Decimal) {
	m.amounts[op] = m.amounts[op].Add(amount)
}

func (m *recordingMetrics) DependentFailure(step string) {
	m.dependents = append(m.dependents, step)
}
