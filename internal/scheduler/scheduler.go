package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/config"
	"github.com/scgoddard/InventoryManagement/internal/service/reconcile"
	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
)

const jobTimeout = 5 * time.Minute

// Reconciler runs one reconciliation pass.
type Reconciler interface {
	Run(ctx context.Context) (*reconcile.RunReport, error)
}

// OverdueLister lists overdue items from the committed inventory.
type OverdueLister interface {
	Overdue(ctx context.Context) ([]reporting.OverdueItem, error)
}

// OverdueNotifier delivers the overdue report.
type OverdueNotifier interface {
	NotifyOverdue(ctx context.Context, items []reporting.OverdueItem) error
}

// Scheduler manages the periodic reconciliation job.
type Scheduler struct {
	cron       *cron.Cron
	schedule   string
	reconciler Reconciler
	overdue    OverdueLister
	notifier   OverdueNotifier
	logger     *zap.Logger
}

// NewScheduler creates a scheduler for cfg.CronSchedule evaluated in loc.
// A run still in progress when the next tick fires causes that tick to be skipped.
func NewScheduler(cfg config.ReconcileConfig, loc *time.Location, reconciler Reconciler, overdue OverdueLister, notifier OverdueNotifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Scheduler{
		cron:       c,
		schedule:   cfg.CronSchedule,
		reconciler: reconciler,
		overdue:    overdue,
		notifier:   notifier,
		logger:     logger,
	}
}

// Start registers the reconciliation job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runJob); err != nil {
		return fmt.Errorf("schedule reconciliation %q: %w", s.schedule, err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled reconciliation failed", zap.Error(err))
	}
}

// RunOnce reconciles and, when items are overdue afterwards, notifies the custodian.
// A notification failure is logged and does not fail the run.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	report, err := s.reconciler.Run(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("scheduled reconciliation finished", zap.String("run_id", report.RunID))

	if s.overdue == nil || s.notifier == nil {
		return nil
	}

	items, err := s.overdue.Overdue(ctx)
	if err != nil {
		s.logger.Warn("overdue lookup failed", zap.Error(err))
		return nil
	}
	if err := s.notifier.NotifyOverdue(ctx, items); err != nil {
		s.logger.Error("failed to send overdue report", zap.Error(err))
	}
	return nil
}

type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
