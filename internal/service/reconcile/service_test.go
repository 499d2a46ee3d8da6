package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/repository"
	"github.com/scgoddard/InventoryManagement/internal/repository/memory"
)

type fakeJournal struct {
	marked  map[string]bool
	seenErr error
	markErr error
}

func newFakeJournal() *fakeJournal { return &fakeJournal{marked: make(map[string]bool)} }

func (j *fakeJournal) Seen(_ context.Context, keys []string) (map[string]bool, error) {
	if j.seenErr != nil {
		return nil, j.seenErr
	}
	out := make(map[string]bool)
	for _, key := range keys {
		if j.marked[key] {
			out[key] = true
		}
	}
	return out, nil
}

func (j *fakeJournal) Mark(_ context.Context, keys []string) error {
	if j.markErr != nil {
		return j.markErr
	}
	for _, key := range keys {
		j.marked[key] = true
	}
	return nil
}

type fakeArchive struct {
	saved []models.MetricsSnapshot
}

func (a *fakeArchive) SaveSnapshot(_ context.Context, snapshot models.MetricsSnapshot) error {
	a.saved = append(a.saved, snapshot)
	return nil
}

// failingStore wraps a memory store and fails selected operations.
type failingStore struct {
	*memory.Store
	commitErr error
	loadErr   error
}

func (s *failingStore) LoadLedger(ctx context.Context) ([]models.LedgerEntry, error) {
	if s.loadErr != nil {
		return nil, repository.Wrap("load ledger", s.loadErr)
	}
	return s.Store.LoadLedger(ctx)
}

func (s *failingStore) Commit(ctx context.Context, snapshot models.Snapshot) error {
	if s.commitErr != nil {
		return repository.Wrap("commit", s.commitErr)
	}
	return s.Store.Commit(ctx, snapshot)
}

func newTestService(store repository.Store, opts ...ServiceOption) *Service {
	svc := NewService(store, nil, opts...)
	svc.now = func() time.Time { return testNow }
	svc.newID = func() string { return "run-1" }
	return svc
}

func oneItemStore(events ...models.Event) *memory.Store {
	return memory.NewStore(events, models.Snapshot{
		Inventory: []models.InventoryItem{availableItem("SN-001", "Helmet, ACH")},
	})
}

func TestServiceCheckOutThenCheckIn(t *testing.T) {
	ctx := context.Background()
	store := oneItemStore(checkOutEvent("SN-001 - Helmet", day(1)))
	journal := newFakeJournal()
	svc := newTestService(store, WithJournal(journal))

	report, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Outcomes[OutcomeCheckedOut])

	items, err := store.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, items[0].Status)

	ledger, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "TXN-001", ledger[0].TransactionID)
	assert.Equal(t, models.LedgerActive, ledger[0].Status)

	store.AddEvents(checkInEvent("SN-001", "Good"))
	report, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Replayed)
	assert.Equal(t, 1, report.Events)
	assert.Equal(t, 1, report.Outcomes[OutcomeCheckedIn])

	items, err = store.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, items[0].Status)
	assert.Empty(t, items[0].CurrentUser)
	assert.Nil(t, items[0].DueDate)

	ledger, err = store.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.LedgerCompleted, ledger[0].Status)
	require.NotNil(t, ledger[0].CheckInDate)

	metrics, err := store.LoadMetrics(ctx)
	require.NoError(t, err)
	values := metrics.Values()
	assert.Equal(t, 1.0, values[models.MetricTotalItems])
	assert.Equal(t, 1.0, values[models.MetricAvailableItems])
	assert.Equal(t, 0.0, values[models.MetricCheckedOutItems])
	assert.Equal(t, 1.0, values[models.MetricTotalTransactions])
	assert.Equal(t, 1.0, values[models.MetricCompletedTransactions])
	assert.Equal(t, 0.0, values[models.MetricUtilizationRate])

	total, ok := metrics.Lookup(models.MetricTotalItems)
	require.True(t, ok)
	require.NotNil(t, total.LastUpdated)
	assert.True(t, testNow.Equal(*total.LastUpdated))
}

func TestServiceWithoutJournalReplaysFormEachPass(t *testing.T) {
	ctx := context.Background()
	store := oneItemStore(checkOutEvent("SN-001 - Helmet", day(1)))
	svc := newTestService(store)

	_, err := svc.Run(ctx)
	require.NoError(t, err)
	report, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Replayed)

	ledger, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 2)
}

func TestServiceArchivesCommittedPass(t *testing.T) {
	archive := &fakeArchive{}
	svc := newTestService(oneItemStore(checkOutEvent("SN-001", day(1))), WithArchive(archive))

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, archive.saved, 1)
	saved := archive.saved[0]
	assert.Equal(t, "run-1", saved.RunID)
	assert.Equal(t, report.RunID, saved.RunID)
	assert.Equal(t, 1, saved.EventsProcessed)
	assert.Equal(t, 1, saved.LedgerSize)
	assert.Equal(t, 1.0, saved.Values[models.MetricCheckedOutItems])
}

func TestServiceCommitFailureLeavesStoreAndJournal(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: oneItemStore(checkOutEvent("SN-001", day(1))), commitErr: errors.New("disk full")}
	journal := newFakeJournal()
	archive := &fakeArchive{}
	svc := newTestService(store, WithJournal(journal), WithArchive(archive))

	_, err := svc.Run(ctx)
	require.ErrorIs(t, err, repository.ErrStore)

	items, err := store.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, items[0].Status)
	assert.Empty(t, journal.marked)
	assert.Empty(t, archive.saved)
	assert.Zero(t, store.Commits())
}

func TestServiceLoadFailureAborts(t *testing.T) {
	store := &failingStore{Store: oneItemStore(checkOutEvent("SN-001", day(1))), loadErr: errors.New("sheet missing")}
	svc := newTestService(store)

	_, err := svc.Run(context.Background())
	require.ErrorIs(t, err, repository.ErrStore)
	assert.Contains(t, err.Error(), "load ledger")
	assert.Zero(t, store.Commits())
}

func TestServiceStrictModeRejectsUnknownSerial(t *testing.T) {
	store := oneItemStore(checkOutEvent("SN-404 - Ghost", day(1)))
	svc := newTestService(store, WithStrict(true))

	_, err := svc.Run(context.Background())
	require.ErrorIs(t, err, ErrRejectedEvents)
	assert.Zero(t, store.Commits())
}

func TestServiceJournalErrorAborts(t *testing.T) {
	store := oneItemStore(checkOutEvent("SN-001", day(1)))
	journal := newFakeJournal()
	journal.seenErr = errors.New("connection refused")
	svc := newTestService(store, WithJournal(journal))

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event journal")
	assert.Zero(t, store.Commits())
}

func TestServiceJournalMarkFailureKeepsCommit(t *testing.T) {
	store := oneItemStore(checkOutEvent("SN-001", day(1)))
	journal := newFakeJournal()
	journal.markErr = errors.New("connection reset")
	svc := newTestService(store, WithJournal(journal))

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.Commits())
}

func TestServiceJournalKeepsDeferredEventsPending(t *testing.T) {
	ctx := context.Background()
	store := oneItemStore(checkOutEvent("SN-001 - Helmet", day(1)), checkInEvent("SN-001", "Good"))
	journal := newFakeJournal()
	svc := newTestService(store, WithJournal(journal))

	report, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Outcomes[OutcomeCheckedOut])
	assert.Equal(t, 1, report.Outcomes[OutcomeDuplicate])
	assert.Len(t, journal.marked, 1)

	report, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Events)
	assert.Equal(t, 1, report.Replayed)
	assert.Equal(t, 1, report.Outcomes[OutcomeCheckedIn])

	items, err := store.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, items[0].Status)

	ledger, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.LedgerCompleted, ledger[0].Status)

	report, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Events)
	assert.Equal(t, 2, report.Replayed)
}
