package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// BacktestRequest is the body of POST /api/portfolios.
//
// Two encodings are accepted:
//
//	["2015-01-01", "2020-12-31", [{"name": "A", "assets": [...]}]]
//	{"startDate": "2015-01-01", "endDate": "2020-12-31", "portfolios": [...]}
//
// Dates are "2006-01-02" or RFC3339.
type BacktestRequest struct {
	StartDate  time.Time         `json:"startDate"`
	EndDate    time.Time         `json:"endDate"`
	Portfolios []model.Portfolio `json:"portfolios"`
}

type backtestObject struct {
	StartDate  string            `json:"startDate"`
	EndDate    string            `json:"endDate"`
	Portfolios []model.Portfolio `json:"portfolios"`
}

// UnmarshalJSON implements json.Unmarshaler for both encodings.
func (r *BacktestRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty request body")
	}

	var raw backtestObject
	switch data[0] {
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		if len(parts) != 3 {
			return fmt.Errorf("expected [startDate, endDate, portfolios], got %d elements", len(parts))
		}
		if err := json.Unmarshal(parts[0], &raw.StartDate); err != nil {
			return fmt.Errorf("startDate: %w", err)
		}
		if err := json.Unmarshal(parts[1], &raw.EndDate); err != nil {
			return fmt.Errorf("endDate: %w", err)
		}
		if err := json.Unmarshal(parts[2], &raw.Portfolios); err != nil {
			return fmt.Errorf("portfolios: %w", err)
		}
	case '{':
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("request body must be a JSON array or object")
	}

	var err error
	if r.StartDate, err = parseDate(raw.StartDate); err != nil {
		return fmt.Errorf("startDate: %w", err)
	}
	if r.EndDate, err = parseDate(raw.EndDate); err != nil {
		return fmt.Errorf("endDate: %w", err)
	}
	r.Portfolios = raw.Portfolios
	return nil
}

// parseDate parses a date string in "2006-01-02" or RFC3339 format.
// An empty string yields the zero time so validation can report it as missing.
func parseDate(str string) (time.Time, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", str)
	if err != nil {
		t, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", str)
		}
		t = t.UTC()
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t, nil
}
