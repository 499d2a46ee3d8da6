package repository

import (
	"context"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

// Store loads the reconciliation inputs and persists the results of a pass.
// Commit replaces inventory, ledger and dashboard in a single atomic step: on
// error none of the new state is visible.
type Store interface {
	LoadEvents(ctx context.Context) ([]models.Event, error)
	LoadInventory(ctx context.Context) ([]models.InventoryItem, error)
	LoadLedger(ctx context.Context) ([]models.LedgerEntry, error)
	LoadMetrics(ctx context.Context) (models.Metrics, error)
	Commit(ctx context.Context, snapshot models.Snapshot) error
	Close() error
}
