package models

import "time"

// LedgerStatus enumerates the lifecycle states of a checkout transaction.
type LedgerStatus string

const (
	LedgerActive    LedgerStatus = "Active"
	LedgerOverdue   LedgerStatus = "Overdue"
	LedgerCompleted LedgerStatus = "Completed"
)

// LedgerEntry records one check-out to check-in cycle of an item.
type LedgerEntry struct {
	TransactionID string
	SerialNumber  string
	ItemName      string
	UserName      string
	CheckOutDate  time.Time
	DueDate       *time.Time
	CheckInDate   *time.Time
	Status        LedgerStatus
}

// IsOpen reports whether the entry still waits for its check-in.
func (e LedgerEntry) IsOpen() bool {
	return (e.Status == LedgerActive || e.Status == LedgerOverdue) && e.CheckInDate == nil
}

// PastDue reports whether the entry carries a due date strictly before now.
func (e LedgerEntry) PastDue(now time.Time) bool {
	return e.DueDate != nil && e.DueDate.Before(now)
}
