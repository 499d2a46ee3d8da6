package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/scgoddard/InventoryManagement/internal/config"
	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/repository"
	"github.com/scgoddard/InventoryManagement/internal/repository/table"
)

// GoogleSheetRepository implements repository.Store over the shared Google
// Sheet the equipment form writes into.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheets        table.Sheets
	codec         *table.Codec
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed store using the
// service account credentials file from cfg.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, loc *time.Location, logger *zap.Logger) (*GoogleSheetRepository, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, repository.Wrap("open sheets", fmt.Errorf("failed to initialize sheets client: %w", err))
	}
	return NewWithService(service, cfg, loc, logger), nil
}

// NewWithService wraps an already configured Sheets client.
func NewWithService(service *sheetsapi.Service, cfg config.SheetsConfig, loc *time.Location, logger *zap.Logger) *GoogleSheetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheets: table.Sheets{
			Form:      cfg.FormSheet,
			Gear:      cfg.GearSheet,
			Checkout:  cfg.CheckoutSheet,
			Dashboard: cfg.DashboardSheet,
		}.WithDefaults(),
		codec:  table.NewCodec(loc),
		logger: logger,
	}
}

func (r *GoogleSheetRepository) LoadEvents(ctx context.Context) ([]models.Event, error) {
	grid, err := r.readRange(ctx, r.sheets.Form)
	if err != nil {
		return nil, repository.Wrap("load events", err)
	}
	events, err := r.codec.DecodeEvents(r.sheets.Form, grid)
	return events, repository.Wrap("load events", err)
}

func (r *GoogleSheetRepository) LoadInventory(ctx context.Context) ([]models.InventoryItem, error) {
	grid, err := r.readRange(ctx, r.sheets.Gear)
	if err != nil {
		return nil, repository.Wrap("load inventory", err)
	}
	items, err := r.codec.DecodeInventory(r.sheets.Gear, grid)
	return items, repository.Wrap("load inventory", err)
}

func (r *GoogleSheetRepository) LoadLedger(ctx context.Context) ([]models.LedgerEntry, error) {
	grid, err := r.readRange(ctx, r.sheets.Checkout)
	if err != nil {
		return nil, repository.Wrap("load ledger", err)
	}
	entries, err := r.codec.DecodeLedger(r.sheets.Checkout, grid)
	return entries, repository.Wrap("load ledger", err)
}

func (r *GoogleSheetRepository) LoadMetrics(ctx context.Context) (models.Metrics, error) {
	grid, err := r.readRange(ctx, r.sheets.Dashboard)
	if err != nil {
		return nil, repository.Wrap("load metrics", err)
	}
	metrics, err := r.codec.DecodeMetrics(r.sheets.Dashboard, grid)
	return metrics, repository.Wrap("load metrics", err)
}

// Commit rewrites the gear, checkout and dashboard tabs with a single
// values.batchUpdate call. Rows past the new end of a tab are blanked.
func (r *GoogleSheetRepository) Commit(ctx context.Context, snapshot models.Snapshot) error {
	tabs := []struct {
		sheet  string
		encode func(previous [][]string) [][]any
	}{
		{r.sheets.Gear, func(previous [][]string) [][]any { return r.codec.EncodeInventory(previous, snapshot.Inventory) }},
		{r.sheets.Checkout, func(previous [][]string) [][]any { return r.codec.EncodeLedger(previous, snapshot.Ledger) }},
		{r.sheets.Dashboard, func(previous [][]string) [][]any { return r.codec.EncodeMetrics(previous, snapshot.Metrics) }},
	}

	data := make([]*sheetsapi.ValueRange, 0, len(tabs))
	for _, tab := range tabs {
		previous, err := r.readRange(ctx, tab.sheet)
		if err != nil {
			return repository.Wrap("commit", err)
		}
		data = append(data, &sheetsapi.ValueRange{
			Range:          quote(tab.sheet) + "!A1",
			MajorDimension: "ROWS",
			Values:         padRows(tab.encode(previous), previous),
		})
	}

	request := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := r.service.Spreadsheets.Values.BatchUpdate(r.spreadsheetID, request).Context(ctx).Do(); err != nil {
		return repository.Wrap("commit", fmt.Errorf("batch update spreadsheet %s: %w", r.spreadsheetID, err))
	}

	r.logger.Debug("sheets committed",
		zap.Int("inventory_rows", len(snapshot.Inventory)),
		zap.Int("ledger_rows", len(snapshot.Ledger)),
	)
	return nil
}

func (r *GoogleSheetRepository) Close() error { return nil }

// readRange fetches a whole tab. Dates come back as serial numbers so the
// codec does not depend on the spreadsheet locale.
func (r *GoogleSheetRepository) readRange(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, quote(sheet)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheet, err)
	}
	return table.Strings(resp.Values), nil
}

func quote(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// padRows appends blank rows so the write covers every row the tab used to have.
func padRows(rows [][]any, previous [][]string) [][]any {
	width := 0
	for _, row := range previous {
		width = max(width, len(row))
	}
	for _, row := range rows {
		width = max(width, len(row))
	}

	out := make([][]any, 0, max(len(rows), len(previous)))
	for _, row := range rows {
		out = append(out, widen(row, width))
	}
	for len(out) < len(previous) {
		out = append(out, widen(nil, width))
	}
	return out
}

func widen(row []any, width int) []any {
	out := make([]any, width)
	copy(out, row)
	for i := len(row); i < width; i++ {
		out[i] = ""
	}
	return out
}
