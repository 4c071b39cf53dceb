package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CachePruner removes stale price cache entries. repository.PriceRepository implements it.
type CachePruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MaintenanceService runs scheduled housekeeping of the price cache.
type MaintenanceService struct {
	pruner CachePruner
	ttl    time.Duration
	cron   *cron.Cron
	now    func() time.Time
}

// NewMaintenanceService creates a MaintenanceService that prunes entries older than ttl.
func NewMaintenanceService(pruner CachePruner, ttl time.Duration) *MaintenanceService {
	return &MaintenanceService{
		pruner: pruner,
		ttl:    ttl,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// PruneCache deletes cache entries fetched more than ttl ago.
func (s *MaintenanceService) PruneCache(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl)
	removed, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune price cache: %w", err)
	}
	return removed, nil
}

// Start schedules PruneCache with a cron spec such as "@every 6h" or "0 3 * * *".
func (s *MaintenanceService) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		removed, err := s.PruneCache(context.Background())
		if err != nil {
			log.Printf("maintenance: %v", err)
			return
		}
		log.Printf("maintenance: pruned %d cached price ranges", removed)
	})
	if err != nil {
		return fmt.Errorf("invalid cache prune schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (s *MaintenanceService) Stop() context.Context {
	return s.cron.Stop()
}
