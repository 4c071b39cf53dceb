package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/testutil"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/yahoo"
)

// TestSearchService_Keyword tests searching the static ticker list.
//
// WHY: The frontend autocompletes on every keystroke. Matching must ignore case
// and surrounding whitespace and must keep list order.
func TestSearchService_Keyword(t *testing.T) {
	svc := testutil.NewTestSearchService(t, testutil.NewMockYahooClient())

	t.Run("matches name case-insensitively", func(t *testing.T) {
		got := svc.Keyword("  APPLE ")
		if len(got) != 1 || got[0].Symbol != "AAPL" {
			t.Errorf("Expected AAPL, got %+v", got)
		}
	})

	t.Run("matches symbol", func(t *testing.T) {
		got := svc.Keyword("msft")
		if len(got) != 1 || got[0].Name != "Microsoft Corporation" {
			t.Errorf("Expected Microsoft, got %+v", got)
		}
	})

	t.Run("no match returns an empty list", func(t *testing.T) {
		got := svc.Keyword("zzzzzz")
		if got == nil || len(got) != 0 {
			t.Errorf("Expected a non-nil empty list, got %#v", got)
		}
	})

	t.Run("empty search matches everything", func(t *testing.T) {
		if got := svc.Keyword(""); len(got) != 44 {
			t.Errorf("Expected the whole list, got %d", len(got))
		}
	})
}

func TestSearchService_KeywordLimit(t *testing.T) {
	svc := testutil.NewTestSearchService(t, testutil.NewMockYahooClient())
	all := svc.Keyword("inc")

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"limits results", 3, 3},
		{"zero returns all", 0, len(all)},
		{"limit above match count returns all", 1000, len(all)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.KeywordLimit("inc", tt.limit)
			if err != nil {
				t.Fatalf("KeywordLimit() returned unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Expected %d results, got %d", tt.want, len(got))
			}
			if len(got) > 0 && got[0] != all[0] {
				t.Errorf("Expected list order to be kept, got %+v first", got[0])
			}
		})
	}

	t.Run("negative limit", func(t *testing.T) {
		if _, err := svc.KeywordLimit("inc", -1); !errors.Is(err, apperrors.ErrInvalidLimit) {
			t.Errorf("Expected ErrInvalidLimit, got %v", err)
		}
	})
}

func TestSearchService_Remote(t *testing.T) {
	ctx := context.Background()

	t.Run("maps search items", func(t *testing.T) {
		mock := testutil.NewMockYahooClient().WithSearchResults(
			yahoo.SearchItem{Symbol: "VWRL.AS", Name: "Vanguard FTSE All-World"},
		)
		got, err := testutil.NewTestSearchService(t, mock).Remote(ctx, "vwrl")
		if err != nil {
			t.Fatalf("Remote() returned unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Symbol != "VWRL.AS" || got[0].Name != "Vanguard FTSE All-World" {
			t.Errorf("Unexpected results %+v", got)
		}
	})

	t.Run("propagates client errors", func(t *testing.T) {
		mock := testutil.NewMockYahooClient().WithError(errors.New("unreachable"))
		if _, err := testutil.NewTestSearchService(t, mock).Remote(ctx, "vwrl"); err == nil {
			t.Error("Expected an error")
		}
	})
}

func TestLoadTickers(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := service.LoadTickers(filepath.Join(t.TempDir(), "missing.json"))
		if !errors.Is(err, apperrors.ErrFailedToLoadTickers) {
			t.Errorf("Expected ErrFailedToLoadTickers, got %v", err)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := service.LoadTickers(filepath.Join(testutil.DataDir(t), "result_metadata.json"))
		if !errors.Is(err, apperrors.ErrFailedToLoadTickers) {
			t.Errorf("Expected ErrFailedToLoadTickers, got %v", err)
		}
	})
}
