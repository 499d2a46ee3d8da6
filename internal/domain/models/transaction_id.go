package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const transactionPrefix = "TXN-"

// NextTransactionID returns the identifier following the highest well-formed
// TXN-NNN id in entries. Malformed ids are ignored.
func NextTransactionID(entries []LedgerEntry) string {
	highest := 0
	for _, entry := range entries {
		if n, ok := transactionNumber(entry.TransactionID); ok && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", transactionPrefix, highest+1)
}

func transactionNumber(id string) (int, bool) {
	suffix, found := strings.CutPrefix(strings.TrimSpace(id), transactionPrefix)
	if !found || suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n == math.MaxInt {
		return 0, false
	}
	return n, true
}
