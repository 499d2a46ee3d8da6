package models

import "time"

// ItemStatus enumerates the availability states of a gear item.
type ItemStatus string

const (
	StatusAvailable     ItemStatus = "Available"
	StatusCheckedOut    ItemStatus = "Checked Out"
	StatusInMaintenance ItemStatus = "In Maintenance"
	StatusLost          ItemStatus = "Lost"
)

// InventoryItem is one row of the gear inventory, keyed by serial number.
// CurrentUser and DueDate are only populated while the item is checked out.
type InventoryItem struct {
	SerialNumber string
	ItemName     string
	Category     string
	Location     string
	Status       ItemStatus
	CurrentUser  string
	DueDate      *time.Time
}

// IsOverdue reports whether a checked out item has passed its due date.
func (i InventoryItem) IsOverdue(now time.Time) bool {
	return i.Status == StatusCheckedOut && i.DueDate != nil && i.DueDate.Before(now)
}
