package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/service/reconcile"
	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
)

// Reconciler triggers a reconciliation pass.
type Reconciler interface {
	Run(ctx context.Context) (*reconcile.RunReport, error)
}

// Reports is the read side exposed over HTTP.
type Reports interface {
	Dashboard(ctx context.Context) ([]reporting.DashboardRow, error)
	Availability(ctx context.Context, serial string) (reporting.Availability, error)
	AvailableGear(ctx context.Context) ([]models.InventoryItem, error)
	Overdue(ctx context.Context) ([]reporting.OverdueItem, error)
}

// InventoryHandler serves the inventory API.
type InventoryHandler struct {
	reconciler Reconciler
	reports    Reports
	logger     *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(reconciler Reconciler, reports Reports, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{reconciler: reconciler, reports: reports, logger: logger}
}

type gearView struct {
	SerialNumber string     `json:"serial_number"`
	ItemName     string     `json:"item_name"`
	Category     string     `json:"category,omitempty"`
	Location     string     `json:"location,omitempty"`
	Status       string     `json:"status"`
	CurrentUser  string     `json:"current_user,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

// Reconcile runs a pass and returns its report.
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Run(c.Request.Context())
	if err != nil {
		var rejected *reconcile.RejectedEventsError
		if errors.As(err, &rejected) {
			h.logger.Warn("strict reconciliation rejected events", zap.Int("rejected", len(rejected.Rejected)))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("reconciliation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Dashboard returns the committed metrics.
func (h *InventoryHandler) Dashboard(c *gin.Context) {
	rows, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to load dashboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": rows})
}

// AvailableGear lists items that can be issued.
func (h *InventoryHandler) AvailableGear(c *gin.Context) {
	items, err := h.reports.AvailableGear(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to load inventory", err)
		return
	}

	out := make([]gearView, 0, len(items))
	for _, item := range items {
		out = append(out, gearView{
			SerialNumber: item.SerialNumber,
			ItemName:     item.ItemName,
			Category:     item.Category,
			Location:     item.Location,
			Status:       string(item.Status),
			CurrentUser:  item.CurrentUser,
			DueDate:      item.DueDate,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// Availability answers whether a serial can be checked out.
func (h *InventoryHandler) Availability(c *gin.Context) {
	result, err := h.reports.Availability(c.Request.Context(), c.Param("serial"))
	if err != nil {
		h.fail(c, "failed to load inventory", err)
		return
	}
	if !result.Found {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Overdue lists overdue items, or renders the text report when format=text.
func (h *InventoryHandler) Overdue(c *gin.Context) {
	items, err := h.reports.Overdue(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to load inventory", err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, reporting.FormatOverdueReport(items))
		return
	}
	if items == nil {
		items = []reporting.OverdueItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InventoryHandler) fail(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
