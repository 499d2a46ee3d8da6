// Package workbook stores the inventory in a local .xlsx file laid out like the
// shared Google Sheet.
package workbook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/repository"
	"github.com/scgoddard/InventoryManagement/internal/repository/table"
)

// Store implements repository.Store over an .xlsx workbook. The file is
// reopened on every call so edits made between passes are picked up.
type Store struct {
	path   string
	sheets table.Sheets
	codec  *table.Codec
	logger *zap.Logger
	mu     sync.Mutex
}

// NewStore checks that path exists and returns a store over it.
func NewStore(path string, sheets table.Sheets, loc *time.Location, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, repository.Wrap("open workbook", err)
	}
	return &Store{
		path:   path,
		sheets: sheets.WithDefaults(),
		codec:  table.NewCodec(loc),
		logger: logger,
	}, nil
}

func (s *Store) LoadEvents(ctx context.Context) ([]models.Event, error) {
	grid, err := s.read(ctx, s.sheets.Form)
	if err != nil {
		return nil, repository.Wrap("load events", err)
	}
	events, err := s.codec.DecodeEvents(s.sheets.Form, grid)
	return events, repository.Wrap("load events", err)
}

func (s *Store) LoadInventory(ctx context.Context) ([]models.InventoryItem, error) {
	grid, err := s.read(ctx, s.sheets.Gear)
	if err != nil {
		return nil, repository.Wrap("load inventory", err)
	}
	items, err := s.codec.DecodeInventory(s.sheets.Gear, grid)
	return items, repository.Wrap("load inventory", err)
}

func (s *Store) LoadLedger(ctx context.Context) ([]models.LedgerEntry, error) {
	grid, err := s.read(ctx, s.sheets.Checkout)
	if err != nil {
		return nil, repository.Wrap("load ledger", err)
	}
	entries, err := s.codec.DecodeLedger(s.sheets.Checkout, grid)
	return entries, repository.Wrap("load ledger", err)
}

func (s *Store) LoadMetrics(ctx context.Context) (models.Metrics, error) {
	grid, err := s.read(ctx, s.sheets.Dashboard)
	if err != nil {
		return nil, repository.Wrap("load metrics", err)
	}
	metrics, err := s.codec.DecodeMetrics(s.sheets.Dashboard, grid)
	return metrics, repository.Wrap("load metrics", err)
}

// Commit rewrites gear_inventory, checkout_log and dashboard into a temporary
// file next to the workbook and renames it over the original.
func (s *Store) Commit(ctx context.Context, snapshot models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return repository.Wrap("commit", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return repository.Wrap("commit", fmt.Errorf("open %s: %w", s.path, err))
	}
	defer f.Close()

	writes := []struct {
		sheet  string
		encode func(previous [][]string) [][]any
	}{
		{s.sheets.Gear, func(previous [][]string) [][]any { return s.codec.EncodeInventory(previous, snapshot.Inventory) }},
		{s.sheets.Checkout, func(previous [][]string) [][]any { return s.codec.EncodeLedger(previous, snapshot.Ledger) }},
		{s.sheets.Dashboard, func(previous [][]string) [][]any { return s.codec.EncodeMetrics(previous, snapshot.Metrics) }},
	}
	for _, w := range writes {
		previous, err := existingRows(f, w.sheet)
		if err != nil {
			return repository.Wrap("commit", err)
		}
		if err := writeSheet(f, w.sheet, w.encode(previous), len(previous)); err != nil {
			return repository.Wrap("commit", err)
		}
	}

	if err := s.replace(f); err != nil {
		return repository.Wrap("commit", err)
	}

	s.logger.Debug("workbook committed",
		zap.String("path", s.path),
		zap.Int("inventory_rows", len(snapshot.Inventory)),
		zap.Int("ledger_rows", len(snapshot.Ledger)),
	)
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) read(ctx context.Context, sheet string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return rows(f, sheet)
}

// replace writes f beside the workbook and renames it into place.
func (s *Store) replace(f *excelize.File) error {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp workbook: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

func rows(f *excelize.File, sheet string) ([][]string, error) {
	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return grid, nil
}

// existingRows returns nil for a sheet the workbook does not have yet.
func existingRows(f *excelize.File, sheet string) ([][]string, error) {
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("locate sheet %q: %w", sheet, err)
	}
	if index == -1 {
		return nil, nil
	}
	return rows(f, sheet)
}

// writeSheet overwrites the sheet from A1 and removes rows left over from a
// longer previous version. Missing sheets are created.
func writeSheet(f *excelize.File, sheet string, grid [][]any, previousRows int) error {
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("locate sheet %q: %w", sheet, err)
	}
	if index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet, err)
		}
	}

	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	for r := previousRows; r > len(grid); r-- {
		if err := f.RemoveRow(sheet, r); err != nil {
			return fmt.Errorf("trim %s row %d: %w", sheet, r, err)
		}
	}
	return nil
}
