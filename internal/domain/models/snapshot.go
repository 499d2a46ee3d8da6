package models

import "time"

// Snapshot is the full state written back by a reconciliation pass.
type Snapshot struct {
	Inventory []InventoryItem
	Ledger    []LedgerEntry
	Metrics   Metrics
}

// MetricsSnapshot is the archived copy of one pass's dashboard.
type MetricsSnapshot struct {
	RunID           string             `bson:"run_id" json:"run_id"`
	Values          map[string]float64 `bson:"values" json:"values"`
	EventsProcessed int                `bson:"events_processed" json:"events_processed"`
	LedgerSize      int                `bson:"ledger_size" json:"ledger_size"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}
