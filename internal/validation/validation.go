package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
)

// ValidateLimit parses the max path segment of the limited keyword search.
// Only non-negative integers are accepted.
func ValidateLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 || strings.HasPrefix(raw, "+") {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidLimit, raw)
	}
	return limit, nil
}
