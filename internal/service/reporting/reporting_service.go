package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
)

// Reader is the read side of the store the reporting service needs.
type Reader interface {
	LoadInventory(ctx context.Context) ([]models.InventoryItem, error)
	LoadMetrics(ctx context.Context) (models.Metrics, error)
}

// DashboardRow is a metric prepared for display.
type DashboardRow struct {
	Name        string     `json:"name"`
	Value       float64    `json:"value"`
	Display     string     `json:"display"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Service exposes read-only views over the committed inventory state.
type Service struct {
	repo   Reader
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(repository Reader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger, now: time.Now}
}

// Dashboard returns the last committed metrics with rates rendered as percentages.
func (s *Service) Dashboard(ctx context.Context) ([]DashboardRow, error) {
	metrics, err := s.repo.LoadMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	rows := make([]DashboardRow, 0, len(metrics))
	for _, metric := range metrics {
		rows = append(rows, DashboardRow{
			Name:        metric.Name,
			Value:       metric.Value,
			Display:     formatMetric(metric),
			LastUpdated: metric.LastUpdated,
		})
	}
	return rows, nil
}

// Availability reports whether serial can be checked out.
func (s *Service) Availability(ctx context.Context, serial string) (Availability, error) {
	inventory, err := s.repo.LoadInventory(ctx)
	if err != nil {
		return Availability{}, fmt.Errorf("load inventory: %w", err)
	}

	result := CheckAvailability(inventory, serial, s.now())
	s.logger.Debug("availability checked", zap.String("serial", serial), zap.Bool("available", result.Available))
	return result, nil
}

// AvailableGear lists every item that can be issued.
func (s *Service) AvailableGear(ctx context.Context) ([]models.InventoryItem, error) {
	inventory, err := s.repo.LoadInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return AvailableGear(inventory), nil
}

// Overdue lists overdue items.
func (s *Service) Overdue(ctx context.Context) ([]OverdueItem, error) {
	inventory, err := s.repo.LoadInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return OverdueItems(inventory, s.now()), nil
}

// OverdueReport renders the overdue list as a message.
func (s *Service) OverdueReport(ctx context.Context) (string, error) {
	items, err := s.Overdue(ctx)
	if err != nil {
		return "", err
	}
	return FormatOverdueReport(items), nil
}

func formatMetric(metric models.Metric) string {
	switch metric.Name {
	case models.MetricUtilizationRate, models.MetricOverdueRate:
		return FormatRate(metric.Value)
	default:
		return fmt.Sprintf("%.0f", metric.Value)
	}
}
