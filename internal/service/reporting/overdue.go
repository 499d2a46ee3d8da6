package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

// OverdueItem is one line of the overdue report.
type OverdueItem struct {
	Serial      string    `json:"serial"`
	ItemName    string    `json:"item_name"`
	CurrentUser string    `json:"current_user"`
	DueDate     time.Time `json:"due_date"`
	DaysLate    int       `json:"days_late"`
}

// OverdueItems returns checked out items past their due date, oldest first.
func OverdueItems(inventory []models.InventoryItem, now time.Time) []OverdueItem {
	var out []OverdueItem
	for _, item := range inventory {
		if !item.IsOverdue(now) {
			continue
		}
		out = append(out, OverdueItem{
			Serial:      item.SerialNumber,
			ItemName:    item.ItemName,
			CurrentUser: item.CurrentUser,
			DueDate:     *item.DueDate,
			DaysLate:    int(truncateDay(now).Sub(truncateDay(*item.DueDate)).Hours() / 24),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// FormatOverdueReport renders the overdue list as a plain-text message.
func FormatOverdueReport(items []OverdueItem) string {
	var b strings.Builder
	b.WriteString("OVERDUE ITEMS:\n\n")
	if len(items) == 0 {
		b.WriteString("No overdue items!")
		return b.String()
	}

	for _, item := range items {
		fmt.Fprintf(&b, "• %s (%s)\n  User: %s\n  Due: %s\n\n", item.ItemName, item.Serial, item.CurrentUser, item.DueDate.Format(dateLayout))
	}
	return strings.TrimRight(b.String(), "\n")
}
