package models

import "time"

// Dashboard metric names. The dashboard sheet decides which of them are tracked.
const (
	MetricTotalItems            = "Total Gear Items"
	MetricAvailableItems        = "Available Items"
	MetricCheckedOutItems       = "Checked Out Items"
	MetricOverdueItems          = "Overdue Items"
	MetricInMaintenance         = "Items in Maintenance"
	MetricLostItems             = "Lost Items"
	MetricTotalUsers            = "Total Users"
	MetricActiveCheckouts       = "Active Checkouts"
	MetricTotalTransactions     = "Total Transactions"
	MetricCompletedTransactions = "Completed Transactions"
	MetricUtilizationRate       = "Utilization Rate"
	MetricOverdueRate           = "Overdue Rate"
)

// MetricNames lists every metric the aggregator knows how to compute, in dashboard order.
var MetricNames = []string{
	MetricTotalItems,
	MetricAvailableItems,
	MetricCheckedOutItems,
	MetricOverdueItems,
	MetricInMaintenance,
	MetricLostItems,
	MetricTotalUsers,
	MetricActiveCheckouts,
	MetricTotalTransactions,
	MetricCompletedTransactions,
	MetricUtilizationRate,
	MetricOverdueRate,
}

// Metric is one dashboard row.
type Metric struct {
	Name        string
	Value       float64
	LastUpdated *time.Time
}

// Metrics is the dashboard in sheet order.
type Metrics []Metric

// Lookup returns the metric with the given name.
func (m Metrics) Lookup(name string) (Metric, bool) {
	for _, metric := range m {
		if metric.Name == name {
			return metric, true
		}
	}
	return Metric{}, false
}

// Values flattens the dashboard into a name to value map.
func (m Metrics) Values() map[string]float64 {
	out := make(map[string]float64, len(m))
	for _, metric := range m {
		out[metric.Name] = metric.Value
	}
	return out
}

// DefaultDashboard returns a dashboard tracking every known metric with zero values.
// Stores use it to seed an empty dashboard sheet or table.
func DefaultDashboard() Metrics {
	out := make(Metrics, 0, len(MetricNames))
	for _, name := range MetricNames {
		out = append(out, Metric{Name: name})
	}
	return out
}
