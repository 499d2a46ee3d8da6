package reporting

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

// ComputeMetrics derives every dashboard value from the final inventory and ledger.
func ComputeMetrics(inventory []models.InventoryItem, ledger []models.LedgerEntry, now time.Time) map[string]float64 {
	var available, checkedOut, overdue, maintenance, lost int
	holders := make(map[string]struct{})

	for _, item := range inventory {
		switch item.Status {
		case models.StatusAvailable:
			available++
		case models.StatusCheckedOut:
			checkedOut++
		case models.StatusInMaintenance:
			maintenance++
		case models.StatusLost:
			lost++
		}
		if item.IsOverdue(now) {
			overdue++
		}
		if item.CurrentUser != "" {
			holders[item.CurrentUser] = struct{}{}
		}
	}

	var active, completed int
	borrowers := make(map[string]struct{})
	for _, entry := range ledger {
		switch entry.Status {
		case models.LedgerActive, models.LedgerOverdue:
			active++
		case models.LedgerCompleted:
			completed++
		}
		if entry.UserName != "" {
			borrowers[entry.UserName] = struct{}{}
		}
	}

	// Neither source alone sees every user, so the larger count is reported.
	totalUsers := max(len(holders), len(borrowers))

	return map[string]float64{
		models.MetricTotalItems:            float64(len(inventory)),
		models.MetricAvailableItems:        float64(available),
		models.MetricCheckedOutItems:       float64(checkedOut),
		models.MetricOverdueItems:          float64(overdue),
		models.MetricInMaintenance:         float64(maintenance),
		models.MetricLostItems:             float64(lost),
		models.MetricTotalUsers:            float64(totalUsers),
		models.MetricActiveCheckouts:       float64(active),
		models.MetricTotalTransactions:     float64(len(ledger)),
		models.MetricCompletedTransactions: float64(completed),
		models.MetricUtilizationRate:       ratio(checkedOut, len(inventory)),
		models.MetricOverdueRate:           ratio(overdue, checkedOut),
	}
}

// ApplyMetrics writes values into the rows the dashboard already tracks, stamping
// each with now. Values without a matching row are dropped; rows are never added.
func ApplyMetrics(dashboard models.Metrics, values map[string]float64, now time.Time) models.Metrics {
	out := slices.Clone(dashboard)
	for i := range out {
		value, ok := values[out[i].Name]
		if !ok {
			continue
		}
		stamp := now
		out[i].Value = value
		out[i].LastUpdated = &stamp
	}
	return out
}

// FormatRate renders a ratio as a percentage with two decimals.
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
