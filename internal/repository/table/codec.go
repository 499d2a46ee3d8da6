package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

// Codec converts between sheet cells and domain models. Decoders take the
// tab's rows including the header row; encoders take the previous rows of the
// tab and return the full replacement, header included.
type Codec struct {
	loc *time.Location
}

// NewCodec returns a codec that interprets zoneless dates in loc.
func NewCodec(loc *time.Location) *Codec {
	if loc == nil {
		loc = time.UTC
	}
	return &Codec{loc: loc}
}

// DecodeEvents reads the form responses in sheet order. Rows with no cells are skipped.
func (c *Codec) DecodeEvents(sheet string, grid [][]string) ([]models.Event, error) {
	h, rows := split(grid)
	if len(grid) == 0 {
		return nil, nil
	}
	if err := h.require(sheet, ColTransactionType, ColEquipment); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		event := models.Event{
			SubmittedAt: parseDatePtr(h.get(row, ColTimestamp), c.loc),
			Type:        models.ParseTransactionType(h.get(row, ColTransactionType)),
			Equipment:   h.get(row, ColEquipment),
			UserID:      h.get(row, ColUserID),
			UserName:    h.get(row, ColUserName),
			DueDate:     parseDatePtr(h.get(row, ColEventDueDate), c.loc),
			Condition:   h.get(row, ColCondition),
			Notes:       h.get(row, ColNotes),
		}
		if date, ok := ParseDate(h.get(row, ColEventDate), c.loc); ok {
			event.Date = date
		}
		events = append(events, event)
	}
	return events, nil
}

// DecodeInventory reads gear_inventory.
func (c *Codec) DecodeInventory(sheet string, grid [][]string) ([]models.InventoryItem, error) {
	h, rows := split(grid)
	if len(grid) == 0 {
		return nil, nil
	}
	if err := h.require(sheet, ColSerialNumber, ColStatus); err != nil {
		return nil, err
	}

	items := make([]models.InventoryItem, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		items = append(items, models.InventoryItem{
			SerialNumber: h.get(row, ColSerialNumber),
			ItemName:     h.get(row, ColItemName),
			Category:     h.get(row, ColCategory),
			Location:     h.get(row, ColLocation),
			Status:       models.ItemStatus(h.get(row, ColStatus)),
			CurrentUser:  h.get(row, ColCurrentUser),
			DueDate:      parseDatePtr(h.get(row, ColDueDate), c.loc),
		})
	}
	return items, nil
}

// DecodeLedger reads checkout_log.
func (c *Codec) DecodeLedger(sheet string, grid [][]string) ([]models.LedgerEntry, error) {
	h, rows := split(grid)
	if len(grid) == 0 {
		return nil, nil
	}
	if err := h.require(sheet, ColTransactionID, ColSerialNumber, ColStatus); err != nil {
		return nil, err
	}

	entries := make([]models.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		entry := models.LedgerEntry{
			TransactionID: h.get(row, ColTransactionID),
			SerialNumber:  h.get(row, ColSerialNumber),
			ItemName:      h.get(row, ColItemName),
			UserName:      h.get(row, ColLogUserName),
			DueDate:       parseDatePtr(h.get(row, ColDueDate), c.loc),
			CheckInDate:   parseDatePtr(h.get(row, ColCheckInDate), c.loc),
			Status:        models.LedgerStatus(h.get(row, ColStatus)),
		}
		if date, ok := ParseDate(h.get(row, ColCheckOutDate), c.loc); ok {
			entry.CheckOutDate = date
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DecodeMetrics reads the dashboard. Values written as percentages are read back as ratios.
func (c *Codec) DecodeMetrics(sheet string, grid [][]string) (models.Metrics, error) {
	h, rows := split(grid)
	if len(grid) == 0 {
		return nil, nil
	}
	if err := h.require(sheet, ColMetric, ColValue); err != nil {
		return nil, err
	}

	metrics := make(models.Metrics, 0, len(rows))
	for _, row := range rows {
		name := h.get(row, ColMetric)
		if name == "" {
			continue
		}
		metrics = append(metrics, models.Metric{
			Name:        name,
			Value:       parseNumber(h.get(row, ColValue)),
			LastUpdated: parseDatePtr(h.get(row, ColLastUpdated), c.loc),
		})
	}
	return metrics, nil
}

// EncodeInventory renders items over the previous gear_inventory rows.
func (c *Codec) EncodeInventory(previous [][]string, items []models.InventoryItem) [][]any {
	h, rows := split(previous)
	h = h.extend(GearHeader)
	kept := carry(h, rows, ColSerialNumber)

	out := make([][]any, 0, len(items)+1)
	out = append(out, headerRow(h))
	for _, item := range items {
		row := kept.take(item.SerialNumber, len(h.names))
		h.set(row, ColSerialNumber, item.SerialNumber)
		h.set(row, ColItemName, item.ItemName)
		h.set(row, ColCategory, item.Category)
		h.set(row, ColLocation, item.Location)
		h.set(row, ColStatus, string(item.Status))
		h.set(row, ColCurrentUser, item.CurrentUser)
		h.set(row, ColDueDate, formatDatePtr(item.DueDate))
		out = append(out, row)
	}
	return out
}

// EncodeLedger renders entries over the previous checkout_log rows.
func (c *Codec) EncodeLedger(previous [][]string, entries []models.LedgerEntry) [][]any {
	h, rows := split(previous)
	h = h.extend(CheckoutHeader)
	kept := carry(h, rows, ColTransactionID)

	out := make([][]any, 0, len(entries)+1)
	out = append(out, headerRow(h))
	for _, entry := range entries {
		row := kept.take(entry.TransactionID, len(h.names))
		h.set(row, ColTransactionID, entry.TransactionID)
		h.set(row, ColSerialNumber, entry.SerialNumber)
		h.set(row, ColItemName, entry.ItemName)
		h.set(row, ColLogUserName, entry.UserName)
		h.set(row, ColCheckOutDate, FormatDate(entry.CheckOutDate))
		h.set(row, ColDueDate, formatDatePtr(entry.DueDate))
		h.set(row, ColCheckInDate, formatDatePtr(entry.CheckInDate))
		h.set(row, ColStatus, string(entry.Status))
		out = append(out, row)
	}
	return out
}

// EncodeMetrics renders the dashboard over its previous rows.
func (c *Codec) EncodeMetrics(previous [][]string, metrics models.Metrics) [][]any {
	h, rows := split(previous)
	h = h.extend(DashboardHeader)
	kept := carry(h, rows, ColMetric)

	out := make([][]any, 0, len(metrics)+1)
	out = append(out, headerRow(h))
	for _, metric := range metrics {
		row := kept.take(metric.Name, len(h.names))
		h.set(row, ColMetric, metric.Name)
		h.set(row, ColValue, metric.Value)
		h.set(row, ColLastUpdated, formatDatePtr(metric.LastUpdated))
		out = append(out, row)
	}
	return out
}

func parseNumber(raw string) float64 {
	value := strings.TrimSpace(raw)
	percent := strings.HasSuffix(value, "%")
	value = strings.TrimSuffix(value, "%")
	value = strings.ReplaceAll(value, ",", "")

	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	if percent {
		return n / 100
	}
	return n
}

// Strings converts any-typed cells as returned by spreadsheet APIs.
func Strings(rows [][]any) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellString(cell)
		}
		out[i] = cells
	}
	return out
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
