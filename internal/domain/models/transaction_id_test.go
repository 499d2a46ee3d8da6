package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ledgerWithIDs(ids ...string) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, LedgerEntry{TransactionID: id})
	}
	return entries
}

func TestNextTransactionID(t *testing.T) {
	tests := []struct {
		name    string
		entries []LedgerEntry
		want    string
	}{
		{name: "empty ledger", entries: nil, want: "TXN-001"},
		{name: "single entry", entries: ledgerWithIDs("TXN-001"), want: "TXN-002"},
		{name: "uses highest not last", entries: ledgerWithIDs("TXN-007", "TXN-003"), want: "TXN-008"},
		{name: "widens past three digits", entries: ledgerWithIDs("TXN-999"), want: "TXN-1000"},
		{name: "skips malformed ids", entries: ledgerWithIDs("TXN-ABC", "TXN-", "ORD-050", "", "TXN-12x", "TXN-004"), want: "TXN-005"},
		{name: "only malformed ids", entries: ledgerWithIDs("bogus", "TXN-?"), want: "TXN-001"},
		{name: "unpadded suffix", entries: ledgerWithIDs("TXN-42"), want: "TXN-043"},
		{name: "skips suffix at int limit", entries: ledgerWithIDs("TXN-9223372036854775807", "TXN-005"), want: "TXN-006"},
		{name: "skips suffix past int limit", entries: ledgerWithIDs("TXN-99999999999999999999", "TXN-005"), want: "TXN-006"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextTransactionID(tt.entries))
		})
	}
}

func TestNextTransactionIDIsMonotonic(t *testing.T) {
	var ledger []LedgerEntry
	previous := 0
	for i := 0; i < 25; i++ {
		id := NextTransactionID(ledger)
		n, ok := transactionNumber(id)
		assert.True(t, ok)
		assert.Greater(t, n, previous)
		previous = n
		ledger = append(ledger, LedgerEntry{TransactionID: id})
	}
}
