package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/yahoo"
)

// SearchService answers ticker lookups from the static ticker list and from
// the Yahoo search assist endpoint.
type SearchService struct {
	tickers     []model.TickerInfo
	yahooClient yahoo.Client
}

// NewSearchService creates a new SearchService over a loaded ticker list.
func NewSearchService(tickers []model.TickerInfo, yahooClient yahoo.Client) *SearchService {
	return &SearchService{
		tickers:     tickers,
		yahooClient: yahooClient,
	}
}

// LoadTickers reads the static ticker list, a JSON array of {symbol, name} objects.
func LoadTickers(path string) ([]model.TickerInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadTickers, err)
	}
	var tickers []model.TickerInfo
	if err := json.Unmarshal(data, &tickers); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToLoadTickers, path, err)
	}
	return tickers, nil
}

// Keyword returns every listed ticker whose symbol or name contains search,
// case-insensitively, in list order. An empty search matches everything.
func (s *SearchService) Keyword(search string) []model.TickerInfo {
	search = strings.ToLower(strings.TrimSpace(search))

	matches := []model.TickerInfo{}
	for _, t := range s.tickers {
		if strings.Contains(strings.ToLower(t.Symbol), search) || strings.Contains(strings.ToLower(t.Name), search) {
			matches = append(matches, t)
		}
	}
	return matches
}

// KeywordLimit returns at most limit matches of Keyword.
// A limit of 0, or one above the match count, returns every match.
func (s *SearchService) KeywordLimit(search string, limit int) ([]model.TickerInfo, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrInvalidLimit, limit)
	}
	matches := s.Keyword(search)
	if limit == 0 || limit > len(matches) {
		return matches, nil
	}
	return matches[:limit], nil
}

// Remote forwards query to Yahoo's search assist and returns its suggestions.
func (s *SearchService) Remote(ctx context.Context, query string) ([]model.TickerInfo, error) {
	items, err := s.yahooClient.SearchSymbols(ctx, strings.ToLower(strings.TrimSpace(query)))
	if err != nil {
		return nil, fmt.Errorf("symbol search failed: %w", err)
	}

	results := make([]model.TickerInfo, len(items))
	for i, item := range items {
		results[i] = model.TickerInfo{Symbol: item.Symbol, Name: item.Name}
	}
	return results, nil
}
