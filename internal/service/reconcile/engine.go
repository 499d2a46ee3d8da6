package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

// ErrRejectedEvents is returned in strict mode when a pass contains events that
// the permissive default would have skipped.
var ErrRejectedEvents = errors.New("reconcile: events rejected")

// Outcome describes what a pass did with a single event.
type Outcome string

const (
	OutcomeCheckedOut       Outcome = "checked_out"
	OutcomeCheckedIn        Outcome = "checked_in"
	OutcomeOrphanCheckIn    Outcome = "orphan_check_in"
	OutcomeAmbiguousCheckIn Outcome = "ambiguous_check_in"
	OutcomeUnknownSerial    Outcome = "unknown_serial"
	OutcomeDuplicate        Outcome = "duplicate"
	OutcomeMissingEquipment Outcome = "missing_equipment"
	OutcomeIgnored          Outcome = "ignored"
)

// EventOutcome is the per-event trace of a pass.
type EventOutcome struct {
	Index         int
	Type          models.TransactionType
	Serial        string
	Outcome       Outcome
	TransactionID string
	Closed        []string
}

// Input is the in-memory snapshot a pass operates on. It is never modified.
type Input struct {
	Events    []models.Event
	Inventory []models.InventoryItem
	Ledger    []models.LedgerEntry
	Now       time.Time
}

// Options tunes the engine.
type Options struct {
	// Strict turns unknown serials and ambiguous check-ins into a failed pass.
	Strict bool
	Logger *zap.Logger
}

// Result holds the updated collections and the per-event trace.
type Result struct {
	Inventory []models.InventoryItem
	Ledger    []models.LedgerEntry
	Outcomes  []EventOutcome
	// MarkedOverdue lists transaction ids moved from Active to Overdue.
	MarkedOverdue []string
}

// Count returns how many events ended with the given outcome.
func (r Result) Count(outcome Outcome) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Outcome == outcome {
			n++
		}
	}
	return n
}

// RejectedEventsError lists the events refused by a strict pass.
type RejectedEventsError struct {
	Rejected []EventOutcome
}

func (e *RejectedEventsError) Error() string {
	parts := make([]string, 0, len(e.Rejected))
	for _, r := range e.Rejected {
		parts = append(parts, fmt.Sprintf("event %d (%s %s): %s", r.Index, r.Type, r.Serial, r.Outcome))
	}
	return fmt.Sprintf("%s: %s", ErrRejectedEvents, strings.Join(parts, "; "))
}

func (e *RejectedEventsError) Unwrap() error { return ErrRejectedEvents }

type pass struct {
	inventory []models.InventoryItem
	ledger    []models.LedgerEntry
	bySerial  map[string][]int
	processed map[string]struct{}
	now       time.Time
	logger    *zap.Logger
}

// Reconcile applies the events in order to copies of the inventory and ledger.
// At most one transition happens per serial number per pass; the first event wins.
func Reconcile(in Input, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &pass{
		inventory: slices.Clone(in.Inventory),
		ledger:    slices.Clone(in.Ledger),
		bySerial:  make(map[string][]int, len(in.Inventory)),
		processed: make(map[string]struct{}),
		now:       in.Now,
		logger:    logger,
	}
	for i, item := range p.inventory {
		p.bySerial[item.SerialNumber] = append(p.bySerial[item.SerialNumber], i)
	}

	result := Result{Outcomes: make([]EventOutcome, 0, len(in.Events))}
	var rejected []EventOutcome

	for i, event := range in.Events {
		outcome := p.apply(i, event)
		result.Outcomes = append(result.Outcomes, outcome)

		fields := []zap.Field{
			zap.Int("event_index", i),
			zap.String("type", string(outcome.Type)),
			zap.String("serial", outcome.Serial),
			zap.String("outcome", string(outcome.Outcome)),
		}
		switch outcome.Outcome {
		case OutcomeUnknownSerial, OutcomeAmbiguousCheckIn:
			logger.Warn("event needs attention", fields...)
			rejected = append(rejected, outcome)
		case OutcomeOrphanCheckIn, OutcomeMissingEquipment:
			logger.Warn("event applied partially or skipped", fields...)
		case OutcomeCheckedOut, OutcomeCheckedIn:
			logger.Info("event applied", append(fields, zap.String("transaction_id", outcome.TransactionID))...)
		default:
			logger.Debug("event skipped", fields...)
		}
	}

	if opts.Strict && len(rejected) > 0 {
		return Result{}, &RejectedEventsError{Rejected: rejected}
	}

	result.MarkedOverdue = p.refreshOverdue()
	result.Inventory = p.inventory
	result.Ledger = p.ledger
	return result, nil
}

func (p *pass) apply(index int, event models.Event) EventOutcome {
	outcome := EventOutcome{Index: index, Type: event.Type}

	if event.Type != models.TransactionCheckOut && event.Type != models.TransactionCheckIn {
		outcome.Outcome = OutcomeIgnored
		return outcome
	}

	descriptor, ok := models.ParseDescriptor(event.Equipment)
	if !ok {
		outcome.Outcome = OutcomeMissingEquipment
		return outcome
	}
	outcome.Serial = descriptor.Serial

	if _, seen := p.processed[descriptor.Serial]; seen {
		outcome.Outcome = OutcomeDuplicate
		return outcome
	}
	p.processed[descriptor.Serial] = struct{}{}

	indexes, known := p.bySerial[descriptor.Serial]
	if !known {
		outcome.Outcome = OutcomeUnknownSerial
		return outcome
	}

	if event.Type == models.TransactionCheckOut {
		outcome.TransactionID = p.checkOut(event, descriptor, indexes)
		outcome.Outcome = OutcomeCheckedOut
		return outcome
	}

	outcome.Closed = p.checkIn(event, descriptor, indexes)
	switch len(outcome.Closed) {
	case 0:
		outcome.Outcome = OutcomeOrphanCheckIn
	case 1:
		outcome.Outcome = OutcomeCheckedIn
		outcome.TransactionID = outcome.Closed[0]
	default:
		outcome.Outcome = OutcomeAmbiguousCheckIn
	}
	return outcome
}

func (p *pass) checkOut(event models.Event, descriptor models.Descriptor, indexes []int) string {
	for _, i := range indexes {
		p.inventory[i].Status = models.StatusCheckedOut
		p.inventory[i].CurrentUser = event.UserID
		p.inventory[i].DueDate = event.DueDate
	}

	name := descriptor.Name
	if name == "" {
		name = p.inventory[indexes[0]].ItemName
	}

	entry := models.LedgerEntry{
		TransactionID: models.NextTransactionID(p.ledger),
		SerialNumber:  descriptor.Serial,
		ItemName:      name,
		UserName:      event.UserName,
		CheckOutDate:  event.Date,
		DueDate:       event.DueDate,
		Status:        models.LedgerActive,
	}
	if entry.PastDue(p.now) {
		entry.Status = models.LedgerOverdue
	}

	p.ledger = append(p.ledger, entry)
	return entry.TransactionID
}

func (p *pass) checkIn(event models.Event, descriptor models.Descriptor, indexes []int) []string {
	status := statusForCondition(event.Condition)
	for _, i := range indexes {
		p.inventory[i].Status = status
		p.inventory[i].CurrentUser = ""
		p.inventory[i].DueDate = nil
	}

	checkedIn := event.Date
	if checkedIn.IsZero() {
		p.logger.Warn("check-in has no usable date, using pass time", zap.String("serial", descriptor.Serial))
		checkedIn = p.now
	}

	var closed []string
	for i := range p.ledger {
		entry := &p.ledger[i]
		if entry.SerialNumber != descriptor.Serial || !entry.IsOpen() {
			continue
		}
		at := checkedIn
		entry.CheckInDate = &at
		entry.Status = models.LedgerCompleted
		closed = append(closed, entry.TransactionID)
	}
	return closed
}

func (p *pass) refreshOverdue() []string {
	var marked []string
	for i := range p.ledger {
		entry := &p.ledger[i]
		if entry.Status == models.LedgerActive && entry.IsOpen() && entry.PastDue(p.now) {
			entry.Status = models.LedgerOverdue
			marked = append(marked, entry.TransactionID)
		}
	}
	return marked
}

// statusForCondition maps the returned-equipment assessment to an item status.
// Unrecognized conditions fall back to Available.
func statusForCondition(condition string) models.ItemStatus {
	switch {
	case condition == "", strings.Contains(condition, "Excellent"), strings.Contains(condition, "Good"):
		return models.StatusAvailable
	case strings.Contains(condition, "Damaged"), strings.Contains(condition, "Needs"):
		return models.StatusInMaintenance
	default:
		return models.StatusAvailable
	}
}
