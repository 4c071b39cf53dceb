package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/metrics"
)

// MetricsHandler serves the metric catalog so clients can label result tables.
type MetricsHandler struct {
	catalog *metrics.Catalog
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(catalog *metrics.Catalog) *MetricsHandler {
	return &MetricsHandler{catalog: catalog}
}

// Catalog handles GET requests for the metric catalog.
//
// Endpoint: GET /api/metrics
// Response: 200 OK with {info, groups, results}
func (h *MetricsHandler) Catalog(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.catalog)
}
