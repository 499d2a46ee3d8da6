// Package memory keeps the inventory workbook in process memory. It backs tests
// and dry runs.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

// Store is a concurrency-safe in-memory repository.Store.
type Store struct {
	mu        sync.RWMutex
	events    []models.Event
	inventory []models.InventoryItem
	ledger    []models.LedgerEntry
	metrics   models.Metrics
	commits   int
}

// NewStore seeds a store with form events and a starting snapshot. A nil
// dashboard is replaced by one tracking every known metric.
func NewStore(events []models.Event, snapshot models.Snapshot) *Store {
	metrics := snapshot.Metrics
	if metrics == nil {
		metrics = models.DefaultDashboard()
	}
	return &Store{
		events:    slices.Clone(events),
		inventory: slices.Clone(snapshot.Inventory),
		ledger:    slices.Clone(snapshot.Ledger),
		metrics:   slices.Clone(metrics),
	}
}

// AddEvents appends form submissions, as a new form response would.
func (s *Store) AddEvents(events ...models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

func (s *Store) LoadEvents(ctx context.Context) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events), nil
}

func (s *Store) LoadInventory(ctx context.Context) ([]models.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.inventory), nil
}

func (s *Store) LoadLedger(ctx context.Context) ([]models.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ledger), nil
}

func (s *Store) LoadMetrics(ctx context.Context) (models.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.metrics), nil
}

// Commit swaps in the new state under the write lock.
func (s *Store) Commit(ctx context.Context, snapshot models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory = slices.Clone(snapshot.Inventory)
	s.ledger = slices.Clone(snapshot.Ledger)
	s.metrics = slices.Clone(snapshot.Metrics)
	s.commits++
	return nil
}

// Commits reports how many snapshots have been committed.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

func (s *Store) Close() error { return nil }
