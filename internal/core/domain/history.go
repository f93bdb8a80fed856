package domain

import (
	"sort"
	"time"
)

// HistoryKind tags a HistoryItem.
type HistoryKind string

const (
	HistoryKindCashback    HistoryKind = "CASHBACK"
	HistoryKindTransaction HistoryKind = "TRANSACTION"
)

// HistoryItem is one entry of the combined history. Exactly one of
// Transaction or Cashback is set, matching Kind.
type HistoryItem struct {
	Kind        HistoryKind        `json:"kind"`
	Transaction *TransactionRecord `json:"transaction,omitempty"`
	Cashback    *CashbackRecord    `json:"cashback,omitempty"`
}

// Timestamp returns the timestamp of the wrapped record.
func (h HistoryItem) Timestamp() time.Time {
	if h.Kind == HistoryKindCashback && h.Cashback != nil {
		return h.Cashback.Timestamp
	}
	if h.Transaction != nil {
		return h.Transaction.Timestamp
	}
	return time.Time{}
}

// MergeHistory combines both streams newest first. On equal timestamps a
// cashback sorts before a transaction; otherwise input order is kept.
func MergeHistory(txns []TransactionRecord, cashbacks []CashbackRecord) []HistoryItem {
	items := make([]HistoryItem, 0, len(txns)+len(cashbacks))
	for i := range txns {
		items = append(items, HistoryItem{Kind: HistoryKindTransaction, Transaction: &txns[i]})
	}
	for i := range cashbacks {
		items = append(items, HistoryItem{Kind: HistoryKindCashback, Cashback: &cashbacks[i]})
	}
	SortHistory(items)
	return items
}

// SortHistory orders items in place with the MergeHistory ordering.
func SortHistory(items []HistoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].Timestamp(), items[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return items[i].Kind == HistoryKindCashback && items[j].Kind == HistoryKindTransaction
	})
}
