package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health checks the health of the service and its price cache.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with HealthInfo
// Error: 503 Service Unavailable if the price cache is enabled but unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.systemService.CheckHealth(r.Context())
	if health.Status != "healthy" {
		response.RespondJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	response.RespondJSON(w, http.StatusOK, health)
}

// Version handles GET requests to retrieve version information and feature availability.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfo
// Error: 500 Internal Server Error if version check fails
func (h *SystemHandler) Version(w http.ResponseWriter, _ *http.Request) {
	version, err := h.systemService.CheckVersion()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to get version information", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, version)
}
