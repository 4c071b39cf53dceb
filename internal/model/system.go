package model

// VersionInfo contains version and feature information for the application.
type VersionInfo struct {
	AppVersion string          `json:"app_version"`
	DbVersion  string          `json:"db_version"` // Price cache schema version, empty when the cache is disabled
	Features   map[string]bool `json:"features"`
}

// HealthInfo describes the state of the service dependencies.
type HealthInfo struct {
	Status     string `json:"status"`
	PriceCache string `json:"price_cache"`
	Error      string `json:"error,omitempty"`
}
