package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/validation"
)

// maxBodyBytes bounds request bodies decoded by parseJSON.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into a T. Unknown fields are ignored.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("request body is empty")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	return v, nil
}

// backtestErrorStatus maps a backtest failure to its HTTP status and message.
func backtestErrorStatus(err error) (int, string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, apperrors.ErrInvalidTicker),
		errors.Is(err, apperrors.ErrSymbolCollision):
		return http.StatusBadRequest, apperrors.ErrInvalidTicker.Error()
	case errors.Is(err, apperrors.ErrNoPortfolios):
		return http.StatusBadRequest, apperrors.ErrNoPortfolios.Error()
	case errors.Is(err, apperrors.ErrInvalidDateRange):
		return http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error()
	case errors.Is(err, apperrors.ErrPriceFetchFailed):
		return http.StatusBadGateway, apperrors.ErrPriceFetchFailed.Error()
	case errors.Is(err, apperrors.ErrSimulation):
		return http.StatusUnprocessableEntity, apperrors.ErrSimulation.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "backtest timed out"
	default:
		return http.StatusInternalServerError, "backtest failed"
	}
}
