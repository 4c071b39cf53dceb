// Package portfolio cleans submitted portfolios and maps raw tickers onto the
// canonical symbols used as join keys throughout the backtest pipeline.
package portfolio

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// Normalized is the outcome of Normalize.
type Normalized struct {
	// Portfolios holds the retained portfolios in input order.
	Portfolios []model.Portfolio
	// Weights holds one canonical symbol -> allocation map per retained portfolio.
	Weights []map[string]float64
	// Tickers lists the raw tickers of the retained portfolios, first-seen order.
	Tickers []string
	// Universe lists the raw tickers of every submitted portfolio, first-seen order.
	// Asset statistics are computed over this set.
	Universe []string
}

// Canonicalize converts a raw ticker into its canonical symbol: the first
// whitespace-separated token, restricted to letters and digits, lowercased.
//
//	Canonicalize("GC=F")       == "gcf"
//	Canonicalize("BRK-B")      == "brkb"
//	Canonicalize("SPY US Eq")  == "spy"
func Canonicalize(ticker string) string {
	fields := strings.Fields(ticker)
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	for _, r := range fields[0] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Clean returns the portfolios holding at least one non-zero allocation,
// preserving input order.
func Clean(portfolios []model.Portfolio) []model.Portfolio {
	cleaned := make([]model.Portfolio, 0, len(portfolios))
	for _, p := range portfolios {
		if !p.IsEmpty() {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned
}

// Normalize cleans the portfolios and builds the weight maps and ticker lists
// needed downstream.
//
// Every ticker of every submitted portfolio is validated, including those of
// portfolios that are dropped for being empty, because the asset universe spans
// all of them. The same raw ticker listed twice within one portfolio has its
// allocations summed.
//
// Errors:
//   - apperrors.ErrInvalidTicker when a ticker canonicalizes to an empty symbol
//   - apperrors.ErrSymbolCollision when two distinct raw tickers share a canonical symbol
//   - apperrors.ErrNoPortfolios when every portfolio is empty
func Normalize(portfolios []model.Portfolio) (Normalized, error) {
	owner := make(map[string]string)    // canonical symbol -> raw ticker
	symbolOf := make(map[string]string) // raw ticker -> canonical symbol
	var universe []string

	for _, p := range portfolios {
		for _, a := range p.Assets {
			symbol := Canonicalize(a.Ticker)
			if symbol == "" {
				return Normalized{}, fmt.Errorf("%w: %q in portfolio %q", apperrors.ErrInvalidTicker, a.Ticker, p.Name)
			}
			raw, seen := owner[symbol]
			if !seen {
				owner[symbol] = a.Ticker
				symbolOf[a.Ticker] = symbol
				universe = append(universe, a.Ticker)
				continue
			}
			if raw != a.Ticker {
				return Normalized{}, fmt.Errorf("%w: %w: %q and %q both map to %q",
					apperrors.ErrInvalidTicker, apperrors.ErrSymbolCollision, raw, a.Ticker, symbol)
			}
		}
	}

	retained := Clean(portfolios)
	if len(retained) == 0 {
		return Normalized{}, apperrors.ErrNoPortfolios
	}

	result := Normalized{
		Portfolios: retained,
		Weights:    make([]map[string]float64, len(retained)),
		Universe:   universe,
	}

	seenTicker := make(map[string]bool)
	for i, p := range retained {
		weights := make(map[string]float64, len(p.Assets))
		for _, a := range p.Assets {
			weights[symbolOf[a.Ticker]] += a.Allocation
			if !seenTicker[a.Ticker] {
				seenTicker[a.Ticker] = true
				result.Tickers = append(result.Tickers, a.Ticker)
			}
		}
		result.Weights[i] = weights
	}

	return result, nil
}
