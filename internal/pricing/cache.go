package pricing

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/repository"
)

// DefaultCacheTTL is how long a fetched range is served from the cache.
const DefaultCacheTTL = 24 * time.Hour

// PriceStore persists fetched histories. repository.PriceRepository implements it.
type PriceStore interface {
	GetCoverage(ctx context.Context, symbol string, start, end, freshSince time.Time) (repository.Coverage, error)
	GetPrices(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error)
	SavePrices(ctx context.Context, symbol string, start, end time.Time, points []model.PricePoint, fetchedAt time.Time) error
}

// CachedSource serves histories from a PriceStore when a fresh coverage record spans
// the requested range, and otherwise fetches from the inner Source and stores the result.
// Store failures are logged and never fail a fetch.
type CachedSource struct {
	inner Source
	store PriceStore
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedSource wraps inner with a cache. A non-positive ttl uses DefaultCacheTTL.
func NewCachedSource(inner Source, store PriceStore, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{
		inner: inner,
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// FetchHistory implements Source.
func (s *CachedSource) FetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	now := s.now().UTC()

	if points, ok := s.fromCache(ctx, ticker, start, end, now); ok {
		return points, nil
	}

	points, err := s.inner.FetchHistory(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	if len(points) > 0 {
		if err := s.store.SavePrices(ctx, ticker, start, end, points, now); err != nil {
			log.Printf("price cache: failed to store %s: %v", ticker, err)
		}
	}

	return points, nil
}

func (s *CachedSource) fromCache(ctx context.Context, ticker string, start, end, now time.Time) ([]model.PricePoint, bool) {
	if _, err := s.store.GetCoverage(ctx, ticker, start, end, now.Add(-s.ttl)); err != nil {
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			log.Printf("price cache: coverage lookup for %s failed: %v", ticker, err)
		}
		return nil, false
	}

	points, err := s.store.GetPrices(ctx, ticker, start, end)
	if err != nil {
		log.Printf("price cache: failed to read %s: %v", ticker, err)
		return nil, false
	}
	if len(points) == 0 {
		return nil, false
	}
	return points, true
}
