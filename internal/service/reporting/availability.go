package reporting

import (
	"fmt"
	"time"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Availability answers whether an item can be issued right now.
type Availability struct {
	Serial        string     `json:"serial"`
	Found         bool       `json:"found"`
	ItemName      string     `json:"item_name,omitempty"`
	Status        string     `json:"status,omitempty"`
	Available     bool       `json:"available"`
	Message       string     `json:"message"`
	EarliestDate  *time.Time `json:"earliest_available,omitempty"`
	CurrentHolder string     `json:"current_holder,omitempty"`
}

// CheckAvailability looks up serial in the inventory and explains its state.
func CheckAvailability(inventory []models.InventoryItem, serial string, now time.Time) Availability {
	result := Availability{Serial: serial}

	item, ok := findItem(inventory, serial)
	if !ok {
		result.Message = "Gear not found"
		return result
	}

	result.Found = true
	result.ItemName = item.ItemName
	result.Status = string(item.Status)

	switch item.Status {
	case models.StatusAvailable:
		result.Available = true
		result.Message = "Available for checkout"
	case models.StatusCheckedOut:
		result.CurrentHolder = item.CurrentUser
		if item.IsOverdue(now) {
			result.Message = fmt.Sprintf("Overdue - Currently with %s", item.CurrentUser)
		} else if item.DueDate != nil {
			result.Message = fmt.Sprintf("Checked out to %s, due back %s", item.CurrentUser, item.DueDate.Format(dateLayout))
		} else {
			result.Message = fmt.Sprintf("Checked out to %s", item.CurrentUser)
		}
	case models.StatusInMaintenance:
		result.Message = "Currently in maintenance"
	case models.StatusLost:
		result.Message = "Reported as lost"
	default:
		result.Message = "Status unknown"
	}

	if item.Status == models.StatusAvailable || item.Status == models.StatusCheckedOut {
		earliest := EarliestAvailableDate(item, now)
		result.EarliestDate = &earliest
	}

	return result
}

// EarliestAvailableDate is today for available or overdue items, otherwise the day
// after the due date.
func EarliestAvailableDate(item models.InventoryItem, now time.Time) time.Time {
	today := truncateDay(now)
	if item.Status == models.StatusAvailable || item.DueDate == nil {
		return today
	}

	due := truncateDay(*item.DueDate)
	if due.Before(today) {
		return today
	}
	return due.AddDate(0, 0, 1)
}

// AvailableGear lists the items that can be issued.
func AvailableGear(inventory []models.InventoryItem) []models.InventoryItem {
	var out []models.InventoryItem
	for _, item := range inventory {
		if item.Status == models.StatusAvailable {
			out = append(out, item)
		}
	}
	return out
}

func findItem(inventory []models.InventoryItem, serial string) (models.InventoryItem, bool) {
	for _, item := range inventory {
		if item.SerialNumber == serial {
			return item, true
		}
	}
	return models.InventoryItem{}, false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
