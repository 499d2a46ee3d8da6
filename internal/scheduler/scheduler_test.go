package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scgoddard/InventoryManagement/internal/config"
	"github.com/scgoddard/InventoryManagement/internal/service/reconcile"
	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
)

type fakeReconciler struct {
	runs int
	err  error
}

func (f *fakeReconciler) Run(context.Context) (*reconcile.RunReport, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return &reconcile.RunReport{RunID: "run-1"}, nil
}

type fakeOverdue struct {
	items []reporting.OverdueItem
	err   error
}

func (f fakeOverdue) Overdue(context.Context) ([]reporting.OverdueItem, error) {
	return f.items, f.err
}

type fakeNotifier struct {
	sent [][]reporting.OverdueItem
	err  error
}

func (f *fakeNotifier) NotifyOverdue(_ context.Context, items []reporting.OverdueItem) error {
	f.sent = append(f.sent, items)
	return f.err
}

func newTestScheduler(r Reconciler, o OverdueLister, n OverdueNotifier) *Scheduler {
	return NewScheduler(config.ReconcileConfig{CronSchedule: "*/15 * * * *"}, nil, r, o, n, nil)
}

func TestRunOnceNotifiesOverdue(t *testing.T) {
	rec := &fakeReconciler{}
	notifier := &fakeNotifier{}
	items := []reporting.OverdueItem{{Serial: "SN-001"}}
	s := newTestScheduler(rec, fakeOverdue{items: items}, notifier)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, rec.runs)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, items, notifier.sent[0])
}

func TestRunOnceReconcileFailureSkipsNotification(t *testing.T) {
	rec := &fakeReconciler{err: errors.New("commit: disk full")}
	notifier := &fakeNotifier{}
	s := newTestScheduler(rec, fakeOverdue{}, notifier)

	require.Error(t, s.RunOnce(context.Background()))
	assert.Empty(t, notifier.sent)
}

func TestRunOnceNotificationFailureIsNotFatal(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("whatsapp down")}
	s := newTestScheduler(&fakeReconciler{}, fakeOverdue{items: []reporting.OverdueItem{{Serial: "SN-001"}}}, notifier)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Len(t, notifier.sent, 1)
}

func TestRunOnceWithoutNotifier(t *testing.T) {
	rec := &fakeReconciler{}
	s := newTestScheduler(rec, nil, nil)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, rec.runs)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(config.ReconcileConfig{CronSchedule: "every day"}, nil, &fakeReconciler{}, nil, nil, nil)
	require.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(&fakeReconciler{}, nil, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
