// Package postgres keeps the inventory workbook in PostgreSQL through gorm.
package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/repository"
)

// Store implements repository.Store on PostgreSQL.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to dsn, migrates the tables and seeds an empty dashboard.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, repository.Wrap("open postgres", err)
	}
	return New(ctx, db, logger)
}

// New wraps an open gorm connection.
func New(ctx context.Context, db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := Migrate(ctx, db); err != nil {
		return nil, repository.Wrap("open postgres", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Migrate creates the tables and seeds the dashboard when it has no rows.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(&formResponse{}, &gearRow{}, &checkoutRow{}, &dashboardRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var count int64
	if err := tx.Model(&dashboardRow{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count dashboard rows: %w", err)
	}
	if count > 0 {
		return nil
	}
	seed := fromMetrics(models.DefaultDashboard())
	if err := tx.Create(&seed).Error; err != nil {
		return fmt.Errorf("seed dashboard: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AddEvents records form submissions.
func (s *Store) AddEvents(ctx context.Context, events ...models.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]formResponse, 0, len(events))
	for _, e := range events {
		rows = append(rows, fromEvent(e))
	}
	return repository.Wrap("add events", s.db.WithContext(ctx).Create(&rows).Error)
}

func (s *Store) LoadEvents(ctx context.Context) ([]models.Event, error) {
	var rows []formResponse
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, repository.Wrap("load events", err)
	}
	events := make([]models.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, toEvent(r))
	}
	return events, nil
}

func (s *Store) LoadInventory(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []gearRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, repository.Wrap("load inventory", err)
	}
	items := make([]models.InventoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, toItem(r))
	}
	return items, nil
}

func (s *Store) LoadLedger(ctx context.Context) ([]models.LedgerEntry, error) {
	var rows []checkoutRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, repository.Wrap("load ledger", err)
	}
	entries := make([]models.LedgerEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, toEntry(r))
	}
	return entries, nil
}

func (s *Store) LoadMetrics(ctx context.Context) (models.Metrics, error) {
	var rows []dashboardRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, repository.Wrap("load metrics", err)
	}
	metrics := make(models.Metrics, 0, len(rows))
	for _, r := range rows {
		metrics = append(metrics, toMetric(r))
	}
	return metrics, nil
}

// Commit replaces the gear, checkout and dashboard tables in one transaction.
func (s *Store) Commit(ctx context.Context, snapshot models.Snapshot) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replace(tx, GearTable, fromItems(snapshot.Inventory)); err != nil {
			return err
		}
		if err := replace(tx, CheckoutTable, fromEntries(snapshot.Ledger)); err != nil {
			return err
		}
		return replace(tx, DashboardTable, fromMetrics(snapshot.Metrics))
	})
	if err != nil {
		return repository.Wrap("commit", err)
	}

	s.logger.Debug("postgres committed",
		zap.Int("inventory_rows", len(snapshot.Inventory)),
		zap.Int("ledger_rows", len(snapshot.Ledger)),
	)
	return nil
}

func replace[T any](tx *gorm.DB, table string, rows []T) error {
	if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
