package postgres

import (
	"time"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

const (
	FormResponsesTable = "inv_form_responses"
	GearTable          = "inv_gear_inventory"
	CheckoutTable      = "inv_checkout_log"
	DashboardTable     = "inv_dashboard"
)

type formResponse struct {
	ID              uint       `gorm:"primaryKey"`
	SubmittedAt     *time.Time `gorm:"index"`
	TransactionType string     `gorm:"size:40;not null"`
	Equipment       string     `gorm:"size:255"`
	UserID          string     `gorm:"size:120"`
	UserName        string     `gorm:"size:200"`
	EventDate       *time.Time
	DueDate         *time.Time
	Condition       string `gorm:"size:200"`
	Notes           string `gorm:"type:text"`
	CreatedAt       time.Time
}

type gearRow struct {
	Position      int    `gorm:"primaryKey;autoIncrement:false"`
	SerialNumber  string `gorm:"size:120;index;not null"`
	ItemName      string `gorm:"size:200"`
	Category      string `gorm:"size:120"`
	ShopLocation  string `gorm:"size:120"`
	Status        string `gorm:"size:40;not null"`
	CurrentHolder string `gorm:"size:120"`
	DueDate       *time.Time
}

type checkoutRow struct {
	Position      int    `gorm:"primaryKey;autoIncrement:false"`
	TransactionID string `gorm:"size:40;index;not null"`
	SerialNumber  string `gorm:"size:120;index;not null"`
	ItemName      string `gorm:"size:200"`
	UserName      string `gorm:"size:200"`
	CheckOutDate  *time.Time
	DueDate       *time.Time
	CheckInDate   *time.Time
	Status        string `gorm:"size:40;not null"`
}

type dashboardRow struct {
	Position    int    `gorm:"primaryKey;autoIncrement:false"`
	Metric      string `gorm:"size:120;not null"`
	Value       float64
	LastUpdated *time.Time
}

func (formResponse) TableName() string { return FormResponsesTable }
func (gearRow) TableName() string      { return GearTable }
func (checkoutRow) TableName() string  { return CheckoutTable }
func (dashboardRow) TableName() string { return DashboardTable }

func toEvent(r formResponse) models.Event {
	e := models.Event{
		SubmittedAt: r.SubmittedAt,
		Type:        models.ParseTransactionType(r.TransactionType),
		Equipment:   r.Equipment,
		UserID:      r.UserID,
		UserName:    r.UserName,
		DueDate:     r.DueDate,
		Condition:   r.Condition,
		Notes:       r.Notes,
	}
	if r.EventDate != nil {
		e.Date = *r.EventDate
	}
	return e
}

func fromEvent(e models.Event) formResponse {
	return formResponse{
		SubmittedAt:     e.SubmittedAt,
		TransactionType: string(e.Type),
		Equipment:       e.Equipment,
		UserID:          e.UserID,
		UserName:        e.UserName,
		EventDate:       timePtr(e.Date),
		DueDate:         e.DueDate,
		Condition:       e.Condition,
		Notes:           e.Notes,
	}
}

func toItem(r gearRow) models.InventoryItem {
	return models.InventoryItem{
		SerialNumber: r.SerialNumber,
		ItemName:     r.ItemName,
		Category:     r.Category,
		Location:     r.ShopLocation,
		Status:       models.ItemStatus(r.Status),
		CurrentUser:  r.CurrentHolder,
		DueDate:      r.DueDate,
	}
}

func fromItems(items []models.InventoryItem) []gearRow {
	rows := make([]gearRow, 0, len(items))
	for i, item := range items {
		rows = append(rows, gearRow{
			Position:      i,
			SerialNumber:  item.SerialNumber,
			ItemName:      item.ItemName,
			Category:      item.Category,
			ShopLocation:  item.Location,
			Status:        string(item.Status),
			CurrentHolder: item.CurrentUser,
			DueDate:       item.DueDate,
		})
	}
	return rows
}

func toEntry(r checkoutRow) models.LedgerEntry {
	entry := models.LedgerEntry{
		TransactionID: r.TransactionID,
		SerialNumber:  r.SerialNumber,
		ItemName:      r.ItemName,
		UserName:      r.UserName,
		DueDate:       r.DueDate,
		CheckInDate:   r.CheckInDate,
		Status:        models.LedgerStatus(r.Status),
	}
	if r.CheckOutDate != nil {
		entry.CheckOutDate = *r.CheckOutDate
	}
	return entry
}

func fromEntries(entries []models.LedgerEntry) []checkoutRow {
	rows := make([]checkoutRow, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, checkoutRow{
			Position:      i,
			TransactionID: entry.TransactionID,
			SerialNumber:  entry.SerialNumber,
			ItemName:      entry.ItemName,
			UserName:      entry.UserName,
			CheckOutDate:  timePtr(entry.CheckOutDate),
			DueDate:       entry.DueDate,
			CheckInDate:   entry.CheckInDate,
			Status:        string(entry.Status),
		})
	}
	return rows
}

func toMetric(r dashboardRow) models.Metric {
	return models.Metric{Name: r.Metric, Value: r.Value, LastUpdated: r.LastUpdated}
}

func fromMetrics(metrics models.Metrics) []dashboardRow {
	rows := make([]dashboardRow, 0, len(metrics))
	for i, metric := range metrics {
		rows = append(rows, dashboardRow{
			Position:    i,
			Metric:      metric.Name,
			Value:       metric.Value,
			LastUpdated: metric.LastUpdated,
		})
	}
	return rows
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
