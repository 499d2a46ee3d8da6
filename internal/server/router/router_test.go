package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scgoddard/InventoryManagement/internal/domain/models"
	"github.com/scgoddard/InventoryManagement/internal/repository/memory"
	"github.com/scgoddard/InventoryManagement/internal/server/handlers"
	"github.com/scgoddard/InventoryManagement/internal/service/reconcile"
	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2020, 1, 8, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore([]models.Event{{
		Type:      models.TransactionCheckOut,
		Equipment: "SN-001 - Helmet, ACH",
		UserID:    "U-100",
		UserName:  "Spc Rivera",
		Date:      issued,
		DueDate:   &due,
	}}, models.Snapshot{
		Inventory: []models.InventoryItem{
			{SerialNumber: "SN-001", ItemName: "Helmet, ACH", Status: models.StatusAvailable},
			{SerialNumber: "SN-002", ItemName: "Radio, PRC-152", Status: models.StatusAvailable},
		},
	})

	handler := handlers.NewInventoryHandler(reconcile.NewService(store, nil), reporting.NewService(store, nil), nil)
	return New(handler, nil)
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReconcileThenQuery(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/reconcile")
	require.Equal(t, http.StatusOK, rec.Code)
	var report reconcile.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Events)
	assert.Equal(t, 1, report.Outcomes[reconcile.OutcomeCheckedOut])
	assert.Equal(t, 1, report.LedgerSize)

	rec = do(t, r, http.MethodGet, "/gear/available")
	require.Equal(t, http.StatusOK, rec.Code)
	var available struct {
		Items []struct {
			SerialNumber string `json:"serial_number"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &available))
	require.Len(t, available.Items, 1)
	assert.Equal(t, "SN-002", available.Items[0].SerialNumber)

	rec = do(t, r, http.MethodGet, "/gear/SN-001/availability")
	require.Equal(t, http.StatusOK, rec.Code)
	var availability reporting.Availability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &availability))
	assert.False(t, availability.Available)
	assert.Equal(t, "U-100", availability.CurrentHolder)
	assert.True(t, strings.HasPrefix(availability.Message, "Overdue"))

	rec = do(t, r, http.MethodGet, "/reports/overdue")
	require.Equal(t, http.StatusOK, rec.Code)
	var overdue struct {
		Items []reporting.OverdueItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overdue))
	require.Len(t, overdue.Items, 1)
	assert.Equal(t, "SN-001", overdue.Items[0].Serial)

	rec = do(t, r, http.MethodGet, "/reports/overdue?format=text")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Helmet, ACH (SN-001)")

	rec = do(t, r, http.MethodGet, "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard struct {
		Metrics []reporting.DashboardRow `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dashboard))
	values := make(map[string]float64)
	for _, row := range dashboard.Metrics {
		values[row.Name] = row.Value
	}
	assert.Equal(t, 2.0, values[models.MetricTotalItems])
	assert.Equal(t, 1.0, values[models.MetricOverdueItems])
}

func TestAvailabilityUnknownSerial(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/gear/SN-404/availability")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gear not found")
}

func TestOverdueEmptyBeforeFirstPass(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/reports/overdue")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}
