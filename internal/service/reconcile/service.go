package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/repository"
	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
)

// Journal remembers events reconciled by earlier committed passes.
type Journal interface {
	Seen(ctx context.Context, keys []string) (map[string]bool, error)
	Mark(ctx context.Context, keys []string) error
}

// Archive keeps a history of dashboard values.
type Archive interface {
	SaveSnapshot(ctx context.Context, snapshot models.MetricsSnapshot) error
}

// RunReport summarizes one committed pass.
type RunReport struct {
	RunID         string             `json:"run_id"`
	StartedAt     time.Time          `json:"started_at"`
	FinishedAt    time.Time          `json:"finished_at"`
	Events        int                `json:"events"`
	Replayed      int                `json:"replayed"`
	Outcomes      map[Outcome]int    `json:"outcomes"`
	MarkedOverdue []string           `json:"marked_overdue,omitempty"`
	LedgerSize    int                `json:"ledger_size"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Service runs reconciliation passes against a store. Passes are serialized.
type Service struct {
	store   repository.Store
	journal Journal
	archive Archive
	strict  bool
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	mu      sync.Mutex
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithJournal skips events a previous committed pass already applied.
func WithJournal(journal Journal) ServiceOption {
	return func(s *Service) { s.journal = journal }
}

// WithArchive stores the dashboard of every committed pass.
func WithArchive(archive Archive) ServiceOption {
	return func(s *Service) { s.archive = archive }
}

// WithStrict makes unknown serials and ambiguous check-ins fail the pass.
func WithStrict(strict bool) ServiceOption {
	return func(s *Service) { s.strict = strict }
}

// NewService wires a reconciliation service around store.
func NewService(store repository.Store, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loads the workbook, reconciles every pending event, recomputes the
// dashboard and commits the result. Nothing is written unless every step
// before the commit succeeds.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &RunReport{RunID: s.newID(), StartedAt: s.now()}
	logger := s.logger.With(zap.String("run_id", report.RunID))

	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	inventory, err := s.store.LoadInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	ledger, err := s.store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	dashboard, err := s.store.LoadMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	pending, keys, err := s.pending(ctx, events)
	if err != nil {
		return nil, err
	}
	report.Events = len(pending)
	report.Replayed = len(events) - len(pending)

	now := s.now()
	result, err := Reconcile(Input{
		Events:    pending,
		Inventory: inventory,
		Ledger:    ledger,
		Now:       now,
	}, Options{Strict: s.strict, Logger: logger})
	if err != nil {
		return nil, err
	}

	values := reporting.ComputeMetrics(result.Inventory, result.Ledger, now)
	snapshot := models.Snapshot{
		Inventory: result.Inventory,
		Ledger:    result.Ledger,
		Metrics:   reporting.ApplyMetrics(dashboard, values, now),
	}
	if err := s.store.Commit(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	report.FinishedAt = s.now()
	report.Outcomes = make(map[Outcome]int)
	for _, o := range result.Outcomes {
		report.Outcomes[o.Outcome]++
	}
	report.MarkedOverdue = result.MarkedOverdue
	report.LedgerSize = len(result.Ledger)
	report.Metrics = values

	s.afterCommit(ctx, logger, report, applied(keys, result.Outcomes))

	logger.Info("reconciliation committed",
		zap.Int("events", report.Events),
		zap.Int("replayed", report.Replayed),
		zap.Int("checked_out", report.Outcomes[OutcomeCheckedOut]),
		zap.Int("checked_in", report.Outcomes[OutcomeCheckedIn]+report.Outcomes[OutcomeOrphanCheckIn]+report.Outcomes[OutcomeAmbiguousCheckIn]),
		zap.Int("skipped", report.Outcomes[OutcomeUnknownSerial]+report.Outcomes[OutcomeDuplicate]+report.Outcomes[OutcomeMissingEquipment]+report.Outcomes[OutcomeIgnored]),
		zap.Int("marked_overdue", len(report.MarkedOverdue)),
		zap.Int("ledger_size", report.LedgerSize),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// pending drops journaled events and returns the keys of the rest, aligned
// with the returned events.
func (s *Service) pending(ctx context.Context, events []models.Event) ([]models.Event, []string, error) {
	if s.journal == nil {
		return events, nil, nil
	}

	keys := make([]string, len(events))
	for i, e := range events {
		keys[i] = e.Key()
	}
	seen, err := s.journal.Seen(ctx, keys)
	if err != nil {
		return nil, nil, fmt.Errorf("read event journal: %w", err)
	}

	out := make([]models.Event, 0, len(events))
	fresh := make([]string, 0, len(events))
	for i, e := range events {
		if seen[keys[i]] {
			continue
		}
		out = append(out, e)
		fresh = append(fresh, keys[i])
	}
	return out, fresh, nil
}

// applied returns the keys of events the pass consumed. Events deferred by the
// one-transition-per-serial rule stay pending for the next pass.
func applied(keys []string, outcomes []EventOutcome) []string {
	if keys == nil {
		return nil
	}
	out := make([]string, 0, len(keys))
	for i, o := range outcomes {
		if o.Outcome == OutcomeDuplicate || i >= len(keys) {
			continue
		}
		out = append(out, keys[i])
	}
	return out
}

// afterCommit records the pass in the journal and the archive. Failures are
// logged only; the workbook is already committed.
func (s *Service) afterCommit(ctx context.Context, logger *zap.Logger, report *RunReport, keys []string) {
	if s.journal != nil {
		if err := s.journal.Mark(ctx, keys); err != nil {
			logger.Error("event journal not updated; these events will be replayed next pass", zap.Int("events", len(keys)), zap.Error(err))
		}
	}
	if s.archive != nil {
		err := s.archive.SaveSnapshot(ctx, models.MetricsSnapshot{
			RunID:           report.RunID,
			Values:          report.Metrics,
			EventsProcessed: report.Events,
			LedgerSize:      report.LedgerSize,
			CreatedAt:       report.FinishedAt,
		})
		if err != nil {
			logger.Warn("metrics snapshot not archived", zap.Error(err))
		}
	}
}
