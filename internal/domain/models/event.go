package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// TransactionType distinguishes form submissions.
type TransactionType string

const (
	TransactionCheckOut TransactionType = "CHECK-OUT"
	TransactionCheckIn  TransactionType = "CHECK-IN"
)

// ParseTransactionType normalizes the free-text form value. Unsupported values are
// returned as-is so callers can log them.
func ParseTransactionType(raw string) TransactionType {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	switch normalized {
	case string(TransactionCheckOut):
		return TransactionCheckOut
	case string(TransactionCheckIn):
		return TransactionCheckIn
	default:
		return TransactionType(strings.TrimSpace(raw))
	}
}

// Event is one form submission waiting to be reconciled.
type Event struct {
	SubmittedAt *time.Time
	Type        TransactionType
	Equipment   string
	UserID      string
	UserName    string
	Date        time.Time
	DueDate     *time.Time
	Condition   string
	Notes       string
}

// Key derives a content hash identifying the submission across passes.
func (e Event) Key() string {
	var b strings.Builder
	if e.SubmittedAt != nil {
		b.WriteString(e.SubmittedAt.UTC().Format(time.RFC3339))
	}
	for _, part := range []string{string(e.Type), e.Equipment, e.UserID, e.UserName, e.Date.UTC().Format(time.RFC3339)} {
		b.WriteByte('|')
		b.WriteString(part)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
