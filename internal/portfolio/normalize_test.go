package portfolio_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/portfolio"
)

// TestCanonicalize tests ticker canonicalization.
//
// WHY: Canonical symbols join price columns with weight maps. If two code paths
// canonicalize differently a portfolio silently loses an asset.
func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"GC=F":       "gcf",
		"AAPL":       "aapl",
		"BRK-B":      "brkb",
		"^GSPC":      "gspc",
		"  spy  ":    "spy",
		"SPY US Eq":  "spy",
		"VWRL.AS":    "vwrlas",
		"=":          "",
		"":           "",
		"msft_2":     "msft2",
		"7203.T":     "7203t",
		"ÄPFEL=X":    "äpfelx",
		"eurusd=x":   "eurusdx",
		"\tqqq\n":    "qqq",
		"A B C":      "a",
		"1234567890": "1234567890",
	}

	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got := portfolio.Canonicalize(in)
			if got != want {
				t.Errorf("Canonicalize(%q) = %q, want %q", in, got, want)
			}
			if again := portfolio.Canonicalize(got); again != got {
				t.Errorf("Canonicalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestClean(t *testing.T) {
	input := []model.Portfolio{
		{Name: "A", Assets: []model.Asset{{Ticker: "AAPL", Allocation: 0.6}, {Ticker: "MSFT", Allocation: 0.4}}},
		{Name: "B", Assets: []model.Asset{{Ticker: "AAPL", Allocation: 0.0}}},
		{Name: "C", Assets: nil},
		{Name: "D", Assets: []model.Asset{{Ticker: "SPY", Allocation: 0}, {Ticker: "TLT", Allocation: 1}}},
	}

	t.Run("drops all-zero portfolios and preserves order", func(t *testing.T) {
		got := portfolio.Clean(input)
		if len(got) != 2 {
			t.Fatalf("Expected 2 portfolios, got %d", len(got))
		}
		if got[0].Name != "A" || got[1].Name != "D" {
			t.Errorf("Expected [A D], got [%s %s]", got[0].Name, got[1].Name)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		once := portfolio.Clean(input)
		twice := portfolio.Clean(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Clean(Clean(x)) != Clean(x): %v vs %v", twice, once)
		}
	})

	t.Run("negative allocation counts as non-zero", func(t *testing.T) {
		got := portfolio.Clean([]model.Portfolio{{Name: "short", Assets: []model.Asset{{Ticker: "SPY", Allocation: -0.5}}}})
		if len(got) != 1 {
			t.Errorf("Expected short portfolio to be retained")
		}
	})
}

// TestNormalize tests weight map and ticker list construction.
//
// WHY: The normalizer decides which portfolios are simulated and which tickers
// are downloaded. Excluded portfolios must still contribute to the asset universe.
func TestNormalize(t *testing.T) {
	t.Run("builds weights, tickers and universe", func(t *testing.T) {
		input := []model.Portfolio{
			{Name: "Empty", Assets: []model.Asset{{Ticker: "TLT", Allocation: 0}}},
			{Name: "Gold", Assets: []model.Asset{{Ticker: "GC=F", Allocation: 0.5}, {Ticker: "SPY", Allocation: 0.5}}},
			{Name: "Stocks", Assets: []model.Asset{{Ticker: "SPY", Allocation: 1}}},
		}

		got, err := portfolio.Normalize(input)
		if err != nil {
			t.Fatalf("Normalize() returned unexpected error: %v", err)
		}

		if len(got.Portfolios) != 2 || got.Portfolios[0].Name != "Gold" || got.Portfolios[1].Name != "Stocks" {
			t.Errorf("Unexpected retained portfolios: %+v", got.Portfolios)
		}

		wantWeights := []map[string]float64{
			{"gcf": 0.5, "spy": 0.5},
			{"spy": 1},
		}
		if !reflect.DeepEqual(got.Weights, wantWeights) {
			t.Errorf("Weights = %v, want %v", got.Weights, wantWeights)
		}

		if want := []string{"GC=F", "SPY"}; !reflect.DeepEqual(got.Tickers, want) {
			t.Errorf("Tickers = %v, want %v", got.Tickers, want)
		}
		if want := []string{"TLT", "GC=F", "SPY"}; !reflect.DeepEqual(got.Universe, want) {
			t.Errorf("Universe = %v, want %v", got.Universe, want)
		}
	})

	t.Run("sums duplicate tickers within a portfolio", func(t *testing.T) {
		got, err := portfolio.Normalize([]model.Portfolio{
			{Name: "dup", Assets: []model.Asset{{Ticker: "SPY", Allocation: 0.3}, {Ticker: "SPY", Allocation: 0.2}}},
		})
		if err != nil {
			t.Fatalf("Normalize() returned unexpected error: %v", err)
		}
		if w := got.Weights[0]["spy"]; w != 0.5 {
			t.Errorf("Expected summed weight 0.5, got %v", w)
		}
		if len(got.Tickers) != 1 {
			t.Errorf("Expected 1 ticker, got %v", got.Tickers)
		}
	})

	t.Run("rejects ticker without symbol characters", func(t *testing.T) {
		_, err := portfolio.Normalize([]model.Portfolio{
			{Name: "bad", Assets: []model.Asset{{Ticker: "==", Allocation: 1}}},
		})
		if !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Expected ErrInvalidTicker, got %v", err)
		}
	})

	t.Run("rejects invalid ticker in an empty portfolio", func(t *testing.T) {
		_, err := portfolio.Normalize([]model.Portfolio{
			{Name: "ok", Assets: []model.Asset{{Ticker: "SPY", Allocation: 1}}},
			{Name: "empty", Assets: []model.Asset{{Ticker: "-", Allocation: 0}}},
		})
		if !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Expected ErrInvalidTicker, got %v", err)
		}
	})

	t.Run("rejects canonical collisions", func(t *testing.T) {
		_, err := portfolio.Normalize([]model.Portfolio{
			{Name: "A", Assets: []model.Asset{{Ticker: "BRK-B", Allocation: 1}}},
			{Name: "B", Assets: []model.Asset{{Ticker: "BRK.B", Allocation: 1}}},
		})
		if !errors.Is(err, apperrors.ErrSymbolCollision) {
			t.Errorf("Expected ErrSymbolCollision, got %v", err)
		}
		if !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Expected collision to also match ErrInvalidTicker, got %v", err)
		}
	})

	t.Run("fails when every portfolio is empty", func(t *testing.T) {
		_, err := portfolio.Normalize([]model.Portfolio{
			{Name: "B", Assets: []model.Asset{{Ticker: "AAPL", Allocation: 0}}},
		})
		if !errors.Is(err, apperrors.ErrNoPortfolios) {
			t.Errorf("Expected ErrNoPortfolios, got %v", err)
		}
	})

	t.Run("is idempotent over its retained portfolios", func(t *testing.T) {
		input := []model.Portfolio{
			{Name: "A", Assets: []model.Asset{{Ticker: "AAPL", Allocation: 0.6}, {Ticker: "MSFT", Allocation: 0.4}}},
			{Name: "B", Assets: []model.Asset{{Ticker: "AAPL", Allocation: 0.0}}},
		}
		first, err := portfolio.Normalize(input)
		if err != nil {
			t.Fatalf("Normalize() returned unexpected error: %v", err)
		}
		second, err := portfolio.Normalize(first.Portfolios)
		if err != nil {
			t.Fatalf("Normalize() returned unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first.Portfolios, second.Portfolios) || !reflect.DeepEqual(first.Weights, second.Weights) {
			t.Errorf("Normalize is not idempotent")
		}
	})
}
