package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/repository"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.db")
	store, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestOpenSeedsDashboardOnce(t *testing.T) {
	ctx := context.Background()
	store, path := openStore(t)

	metrics, err := store.LoadMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, metrics, len(models.MetricNames))
	assert.Equal(t, models.MetricTotalItems, metrics[0].Name)

	require.NoError(t, store.Commit(ctx, models.Snapshot{Metrics: models.Metrics{{Name: models.MetricTotalItems, Value: 4}}}))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	metrics, err = reopened.LoadMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, metrics, 1, "an existing dashboard is not reseeded")
	assert.Equal(t, 4.0, metrics[0].Value)
}

func TestEventsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	submitted := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	due := day(10)
	events := []models.Event{
		{SubmittedAt: &submitted, Type: models.TransactionCheckOut, Equipment: "SN-001 - Radio", UserID: "u1", UserName: "Doe", Date: day(1), DueDate: &due},
		{Type: models.TransactionCheckIn, Equipment: "SN-001", UserID: "u1", UserName: "Doe", Date: day(5), Condition: "Good", Notes: "ok"},
	}
	require.NoError(t, store.AddEvents(ctx, events...))

	loaded, err := store.LoadEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, events, loaded)
}

func TestCommitReplacesTables(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	due := day(10)
	returned := day(5)
	stamp := day(15)
	first := models.Snapshot{
		Inventory: []models.InventoryItem{
			{SerialNumber: "SN-002", ItemName: "Goggles", Status: models.StatusAvailable},
			{SerialNumber: "SN-001", ItemName: "Radio", Category: "Comms", Location: "Shop A", Status: models.StatusCheckedOut, CurrentUser: "u1", DueDate: &due},
		},
		Ledger: []models.LedgerEntry{
			{TransactionID: "TXN-001", SerialNumber: "SN-001", ItemName: "Radio", UserName: "Doe", CheckOutDate: day(1), DueDate: &due, CheckInDate: &returned, Status: models.LedgerCompleted},
			{TransactionID: "TXN-002", SerialNumber: "SN-001", ItemName: "Radio", UserName: "Roe", CheckOutDate: day(6), DueDate: &due, Status: models.LedgerActive},
		},
		Metrics: models.Metrics{{Name: models.MetricTotalItems, Value: 2, LastUpdated: &stamp}},
	}
	require.NoError(t, store.Commit(ctx, first))

	items, err := store.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Inventory, items, "row order is preserved")

	ledger, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Ledger, ledger)

	metrics, err := store.LoadMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Metrics, metrics)

	require.NoError(t, store.Commit(ctx, models.Snapshot{Inventory: first.Inventory[:1]}))
	items, err = store.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	ledger, err = store.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestCommitRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	original := models.Snapshot{Inventory: []models.InventoryItem{{SerialNumber: "SN-001", Status: models.StatusAvailable}}}
	require.NoError(t, store.Commit(ctx, original))

	_, err := store.db.ExecContext(ctx, `DROP TABLE checkout_log`)
	require.NoError(t, err)

	err = store.Commit(ctx, models.Snapshot{Inventory: []models.InventoryItem{{SerialNumber: "SN-001", Status: models.StatusLost}}})
	require.ErrorIs(t, err, repository.ErrStore)

	items, err := store.LoadInventory(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusAvailable, items[0].Status)
}
