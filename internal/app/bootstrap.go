// Package app wires configuration into the services shared by the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/config"
	"github.com/scgoddard/InventoryManagement/internal/repository"
	"github.com/scgoddard/InventoryManagement/internal/repository/mongodb"
	"github.com/scgoddard/InventoryManagement/internal/repository/postgres"
	"github.com/scgoddard/InventoryManagement/internal/repository/redis"
	"github.com/scgoddard/InventoryManagement/internal/repository/sheets"
	"github.com/scgoddard/InventoryManagement/internal/repository/sqlite"
	"github.com/scgoddard/InventoryManagement/internal/repository/table"
	"github.com/scgoddard/InventoryManagement/internal/repository/workbook"
	"github.com/scgoddard/InventoryManagement/internal/service/reconcile"
	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
	whatsappsvc "github.com/scgoddard/InventoryManagement/internal/service/whatsapp"
	whatsappclient "github.com/scgoddard/InventoryManagement/pkg/clients/whatsapp"
	"github.com/scgoddard/InventoryManagement/pkg/logger"
)

// App holds the wired services for one process.
type App struct {
	Config     *config.Config
	Location   *time.Location
	Logger     *zap.Logger
	Store      repository.Store
	Reconciler *reconcile.Service
	Reports    *reporting.Service
	Notifier   *whatsappsvc.Notifier

	closers []func(context.Context) error
}

// Option adjusts how New wires the application.
type Option func(*options)

type options struct {
	reconcile []reconcile.ServiceOption
}

// WithReconcileOptions appends options to the reconciliation service, after
// those derived from configuration.
func WithReconcileOptions(opts ...reconcile.ServiceOption) Option {
	return func(o *options) { o.reconcile = append(o.reconcile, opts...) }
}

// New opens the configured store and the optional journal and archive.
func New(ctx context.Context, cfg *config.Config, base *zap.Logger, appOpts ...Option) (*App, error) {
	if base == nil {
		base = zap.NewNop()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Location: loc, Logger: base}

	store, err := OpenStore(ctx, cfg, loc, logger.Named(base, "repo"))
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })

	opts := []reconcile.ServiceOption{reconcile.WithStrict(cfg.Reconcile.Strict)}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		journal := redis.NewEventJournal(rdb, cfg.Redis.JournalKey)
		a.closers = append(a.closers, func(context.Context) error { return journal.Close() })
		opts = append(opts, reconcile.WithJournal(journal))
		base.Info("event journal enabled", zap.String("key", cfg.Redis.JournalKey))
	}

	if cfg.MongoDB.URI != "" {
		archive, err := mongodb.NewMetricsArchive(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, archive.Close)
		opts = append(opts, reconcile.WithArchive(archive))
		base.Info("metrics archive enabled", zap.String("db", cfg.MongoDB.DBName))
	}

	var extra options
	for _, opt := range appOpts {
		opt(&extra)
	}
	opts = append(opts, extra.reconcile...)

	a.Reconciler = reconcile.NewService(store, logger.Named(base, "svc.reconcile"), opts...)
	a.Reports = reporting.NewService(store, logger.Named(base, "svc.reporting"))

	if cfg.WhatsApp.Enabled() {
		client := whatsappclient.NewClient(cfg.WhatsApp)
		a.Notifier = whatsappsvc.NewNotifier(cfg.WhatsApp, client, logger.Named(base, "svc.whatsapp"))
	} else {
		base.Warn("whatsapp credentials missing, overdue notifications disabled")
		a.Notifier = whatsappsvc.NewNotifier(cfg.WhatsApp, nil, logger.Named(base, "svc.whatsapp"))
	}

	return a, nil
}

// OpenStore builds the Store selected by STORE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config, loc *time.Location, log *zap.Logger) (repository.Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Store.Backend {
	case config.BackendXLSX:
		return workbook.NewStore(cfg.Store.WorkbookPath, sheetNames(cfg.Sheets), loc, log.Named("workbook"))
	case config.BackendSheets:
		return sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, loc, log.Named("sheets"))
	case config.BackendSQLite:
		return sqlite.Open(ctx, cfg.Store.SQLitePath, log.Named("sqlite"))
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.Store.DatabaseURL, log.Named("postgres"))
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownBackend, cfg.Store.Backend)
	}
}

// Close releases every connection opened by New, in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func sheetNames(cfg config.SheetsConfig) table.Sheets {
	return table.Sheets{
		Form:      cfg.FormSheet,
		Gear:      cfg.GearSheet,
		Checkout:  cfg.CheckoutSheet,
		Dashboard: cfg.DashboardSheet,
	}
}
