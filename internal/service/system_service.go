package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/version"
)

// Price cache states reported by the health check.
const (
	CacheConnected    = "connected"
	CacheDisconnected = "disconnected"
	CacheDisabled     = "disabled"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB // nil when the price cache is disabled
}

// NewSystemService creates a new SystemService. db may be nil.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system. The service is healthy without a
// cache; a configured cache must answer a ping.
func (s *SystemService) CheckHealth(ctx context.Context) model.HealthInfo {
	if s.db == nil {
		return model.HealthInfo{Status: "healthy", PriceCache: CacheDisabled}
	}
	if err := ctx.Err(); err != nil {
		return model.HealthInfo{Status: "unhealthy", PriceCache: CacheDisconnected, Error: err.Error()}
	}
	if err := database.HealthCheck(s.db); err != nil {
		return model.HealthInfo{Status: "unhealthy", PriceCache: CacheDisconnected, Error: err.Error()}
	}
	return model.HealthInfo{Status: "healthy", PriceCache: CacheConnected}
}

// CheckVersion returns the application version and the cache schema version.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	info := model.VersionInfo{
		AppVersion: version.Version,
		Features: map[string]bool{
			"price_cache":   s.db != nil,
			"remote_search": true,
		},
	}
	if s.db == nil {
		return info, nil
	}

	dbVersion, err := goose.GetDBVersion(s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("failed to read cache schema version: %w", err)
	}
	info.DbVersion = fmt.Sprintf("%d", dbVersion)
	return info, nil
}
