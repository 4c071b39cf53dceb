package handlers

import (
	"log"
	"net/http"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/validation"
)

// BacktestHandler handles HTTP requests for portfolio backtests.
type BacktestHandler struct {
	backtestService *service.BacktestService
}

// NewBacktestHandler creates a new BacktestHandler with the provided service dependency.
func NewBacktestHandler(backtestService *service.BacktestService) *BacktestHandler {
	return &BacktestHandler{
		backtestService: backtestService,
	}
}

// Backtest handles POST requests to backtest one or more portfolios.
//
// Endpoint: POST /api/portfolios
// Request Body: BacktestRequest, either {startDate, endDate, portfolios} or [startDate, endDate, portfolios]
// Response: 200 OK with the result tables keyed by result name, in catalog order
// Error: 400 Bad Request if the body is malformed, fails validation, or holds an invalid ticker
// Error: 422 Unprocessable Entity if no portfolio could be simulated
// Error: 502 Bad Gateway if no price history could be fetched
// Error: 504 Gateway Timeout if the backtest exceeds its deadline
// Error: 500 Internal Server Error otherwise
func (h *BacktestHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BacktestRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := validation.ValidateBacktestRequest(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	bundle, err := h.backtestService.Run(r.Context(), req)
	if err != nil {
		status, message := backtestErrorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("backtest failed: %v", err)
		}
		response.RespondError(w, status, message, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, bundle)
}
