package service

import (
	"wallet-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// Operation outcomes reported to ports.LedgerMetrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, string)        {}
func (nopMetrics) ObserveAmount(string, decimal.Decimal) {}
func (nopMetrics) DependentFailure(string)                {}

func metricsOrNop(m ports.LedgerMetrics) ports.LedgerMetrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

// outcomeOf classifies err for metrics: client errors are rejections.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if isClientError(err) {
		return OutcomeRejected
	}
	return OutcomeError
}
