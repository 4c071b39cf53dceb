package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/request"
)

// MaxPortfolioNameLength bounds portfolio names, which become table column labels.
const MaxPortfolioNameLength = 100

// ValidateBacktestRequest checks the shape of a backtest request. Ticker symbols and
// empty portfolios are left to the normalizer.
func ValidateBacktestRequest(req request.BacktestRequest) error {
	errors := make(map[string]string)

	if req.StartDate.IsZero() {
		errors["startDate"] = "startDate is required"
	}
	if req.EndDate.IsZero() {
		errors["endDate"] = "endDate is required"
	}
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() && req.StartDate.After(req.EndDate) {
		errors["dateRange"] = "startDate must be on or before endDate"
	}

	if len(req.Portfolios) == 0 {
		errors["portfolios"] = "at least one portfolio is required"
	}

	seen := make(map[string]bool, len(req.Portfolios))
	for i, p := range req.Portfolios {
		field := fmt.Sprintf("portfolios[%d]", i)
		name := strings.TrimSpace(p.Name)
		switch {
		case name == "":
			errors[field+".name"] = "name is required"
		case len(p.Name) > MaxPortfolioNameLength:
			errors[field+".name"] = fmt.Sprintf("name must be %d characters or less", MaxPortfolioNameLength)
		case seen[p.Name]:
			errors[field+".name"] = fmt.Sprintf("duplicate portfolio name %q", p.Name)
		}
		seen[p.Name] = true

		for j, a := range p.Assets {
			assetField := fmt.Sprintf("%s.assets[%d]", field, j)
			if strings.TrimSpace(a.Ticker) == "" {
				errors[assetField+".ticker"] = "ticker is required"
			}
			if math.IsNaN(a.Allocation) || math.IsInf(a.Allocation, 0) {
				errors[assetField+".allocation"] = "allocation must be a finite number"
			}
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
