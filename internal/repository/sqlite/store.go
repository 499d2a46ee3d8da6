// Package sqlite keeps the inventory workbook in a local SQLite database, one
// table per sheet. Row order is kept in a position column.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

// Store implements repository.Store on SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the database at path, applies the schema and seeds an
// empty dashboard with every known metric.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, repository.Wrap("open sqlite", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, repository.Wrap("open sqlite", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, repository.Wrap("open sqlite", fmt.Errorf("execute %q: %w", pragma, err))
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, repository.Wrap("open sqlite", fmt.Errorf("apply schema: %w", err))
	}

	s := &Store{db: db, logger: logger}
	if err := s.seedDashboard(ctx); err != nil {
		db.Close()
		return nil, repository.Wrap("open sqlite", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AddEvents records form submissions.
func (s *Store) AddEvents(ctx context.Context, events ...models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return repository.Wrap("add events", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		date := e.Date
		_, err := tx.ExecContext(ctx, `
			INSERT INTO form_responses
			(submitted_at, transaction_type, equipment, user_id, user_name, event_date, due_date, condition, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, nullTime(e.SubmittedAt), string(e.Type), e.Equipment, e.UserID, e.UserName, nullTime(&date), nullTime(e.DueDate), e.Condition, e.Notes)
		if err != nil {
			return repository.Wrap("add events", err)
		}
	}
	return repository.Wrap("add events", tx.Commit())
}

func (s *Store) LoadEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT submitted_at, transaction_type, equipment, user_id, user_name, event_date, due_date, condition, notes
		FROM form_responses ORDER BY id
	`)
	if err != nil {
		return nil, repository.Wrap("load events", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e                        models.Event
			kind                     string
			submitted, date, dueDate sql.NullString
		)
		if err := rows.Scan(&submitted, &kind, &e.Equipment, &e.UserID, &e.UserName, &date, &dueDate, &e.Condition, &e.Notes); err != nil {
			return nil, repository.Wrap("load events", err)
		}
		e.Type = models.ParseTransactionType(kind)
		if e.SubmittedAt, err = parseTime(submitted); err != nil {
			return nil, repository.Wrap("load events", err)
		}
		if e.DueDate, err = parseTime(dueDate); err != nil {
			return nil, repository.Wrap("load events", err)
		}
		at, err := parseTime(date)
		if err != nil {
			return nil, repository.Wrap("load events", err)
		}
		if at != nil {
			e.Date = *at
		}
		events = append(events, e)
	}
	return events, repository.Wrap("load events", rows.Err())
}

func (s *Store) LoadInventory(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT serial_number, item_name, category, shop_location, status, current_holder, due_date
		FROM gear_inventory ORDER BY position
	`)
	if err != nil {
		return nil, repository.Wrap("load inventory", err)
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var (
			item    models.InventoryItem
			status  string
			dueDate sql.NullString
		)
		if err := rows.Scan(&item.SerialNumber, &item.ItemName, &item.Category, &item.Location, &status, &item.CurrentUser, &dueDate); err != nil {
			return nil, repository.Wrap("load inventory", err)
		}
		item.Status = models.ItemStatus(status)
		if item.DueDate, err = parseTime(dueDate); err != nil {
			return nil, repository.Wrap("load inventory", err)
		}
		items = append(items, item)
	}
	return items, repository.Wrap("load inventory", rows.Err())
}

func (s *Store) LoadLedger(ctx context.Context) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, serial_number, item_name, user_name, check_out_date, due_date, check_in_date, status
		FROM checkout_log ORDER BY position
	`)
	if err != nil {
		return nil, repository.Wrap("load ledger", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			entry                      models.LedgerEntry
			status                     string
			checkOut, dueDate, checkIn sql.NullString
		)
		if err := rows.Scan(&entry.TransactionID, &entry.SerialNumber, &entry.ItemName, &entry.UserName, &checkOut, &dueDate, &checkIn, &status); err != nil {
			return nil, repository.Wrap("load ledger", err)
		}
		entry.Status = models.LedgerStatus(status)
		out, err := parseTime(checkOut)
		if err != nil {
			return nil, repository.Wrap("load ledger", err)
		}
		if out != nil {
			entry.CheckOutDate = *out
		}
		if entry.DueDate, err = parseTime(dueDate); err != nil {
			return nil, repository.Wrap("load ledger", err)
		}
		if entry.CheckInDate, err = parseTime(checkIn); err != nil {
			return nil, repository.Wrap("load ledger", err)
		}
		entries = append(entries, entry)
	}
	return entries, repository.Wrap("load ledger", rows.Err())
}

func (s *Store) LoadMetrics(ctx context.Context) (models.Metrics, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT metric, value, last_updated FROM dashboard ORDER BY position`)
	if err != nil {
		return nil, repository.Wrap("load metrics", err)
	}
	defer rows.Close()

	var metrics models.Metrics
	for rows.Next() {
		var (
			metric  models.Metric
			updated sql.NullString
		)
		if err := rows.Scan(&metric.Name, &metric.Value, &updated); err != nil {
			return nil, repository.Wrap("load metrics", err)
		}
		if metric.LastUpdated, err = parseTime(updated); err != nil {
			return nil, repository.Wrap("load metrics", err)
		}
		metrics = append(metrics, metric)
	}
	return metrics, repository.Wrap("load metrics", rows.Err())
}

// Commit replaces the inventory, ledger and dashboard tables in one transaction.
func (s *Store) Commit(ctx context.Context, snapshot models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return repository.Wrap("commit", err)
	}
	defer tx.Rollback()

	if err := replaceInventory(ctx, tx, snapshot.Inventory); err != nil {
		return repository.Wrap("commit", err)
	}
	if err := replaceLedger(ctx, tx, snapshot.Ledger); err != nil {
		return repository.Wrap("commit", err)
	}
	if err := replaceDashboard(ctx, tx, snapshot.Metrics); err != nil {
		return repository.Wrap("commit", err)
	}
	if err := tx.Commit(); err != nil {
		return repository.Wrap("commit", err)
	}

	s.logger.Debug("sqlite committed",
		zap.Int("inventory_rows", len(snapshot.Inventory)),
		zap.Int("ledger_rows", len(snapshot.Ledger)),
	)
	return nil
}

func (s *Store) seedDashboard(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dashboard`).Scan(&count); err != nil {
		return fmt.Errorf("count dashboard rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := replaceDashboard(ctx, tx, models.DefaultDashboard()); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceInventory(ctx context.Context, tx *sql.Tx, items []models.InventoryItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM gear_inventory`); err != nil {
		return fmt.Errorf("clear gear_inventory: %w", err)
	}
	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO gear_inventory
			(position, serial_number, item_name, category, shop_location, status, current_holder, due_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, i, item.SerialNumber, item.ItemName, item.Category, item.Location, string(item.Status), item.CurrentUser, nullTime(item.DueDate))
		if err != nil {
			return fmt.Errorf("insert item %s: %w", item.SerialNumber, err)
		}
	}
	return nil
}

func replaceLedger(ctx context.Context, tx *sql.Tx, entries []models.LedgerEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM checkout_log`); err != nil {
		return fmt.Errorf("clear checkout_log: %w", err)
	}
	for i, entry := range entries {
		checkOut := entry.CheckOutDate
		_, err := tx.ExecContext(ctx, `
			INSERT INTO checkout_log
			(position, transaction_id, serial_number, item_name, user_name, check_out_date, due_date, check_in_date, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, i, entry.TransactionID, entry.SerialNumber, entry.ItemName, entry.UserName, nullTime(&checkOut), nullTime(entry.DueDate), nullTime(entry.CheckInDate), string(entry.Status))
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", entry.TransactionID, err)
		}
	}
	return nil
}

func replaceDashboard(ctx context.Context, tx *sql.Tx, metrics models.Metrics) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM dashboard`); err != nil {
		return fmt.Errorf("clear dashboard: %w", err)
	}
	for i, metric := range metrics {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dashboard (position, metric, value, last_updated) VALUES (?, ?, ?, ?)
		`, i, metric.Name, metric.Value, nullTime(metric.LastUpdated))
		if err != nil {
			return fmt.Errorf("insert metric %s: %w", metric.Name, err)
		}
	}
	return nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func parseTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return nil, fmt.Errorf("parse time %q: %w", value.String, err)
	}
	return &t, nil
}
