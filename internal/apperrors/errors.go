package apperrors

import "errors"

// Input errors indicate that the submitted request cannot be processed as given.
var (
	// ErrInvalidTicker indicates a raw ticker that canonicalizes to an empty symbol.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrSymbolCollision indicates two distinct raw tickers mapping onto the same
	// canonical symbol within one request.
	ErrSymbolCollision = errors.New("ticker symbol collision")

	// ErrNoPortfolios indicates that no portfolio with a non-zero allocation was submitted.
	ErrNoPortfolios = errors.New("no non-empty portfolios")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidLimit indicates a search limit that is not a non-negative number.
	ErrInvalidLimit = errors.New("limit must be a number")
)

// Price acquisition errors.
var (
	// ErrDataUnavailable indicates that one symbol has no price history.
	// It is attached to that symbol and never fails a request on its own.
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrPriceFetchFailed indicates that no price history could be obtained for any symbol.
	ErrPriceFetchFailed = errors.New("price fetch failed")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Pipeline errors.
var (
	// ErrSimulation indicates a portfolio that cannot be simulated, e.g. a weight map
	// referencing a symbol absent from the price table.
	ErrSimulation = errors.New("simulation failed")

	// ErrFailedToLoadCatalog indicates that the metric catalog files could not be read.
	ErrFailedToLoadCatalog = errors.New("failed to load metric catalog")

	// ErrFailedToLoadTickers indicates that the static ticker list could not be read.
	ErrFailedToLoadTickers = errors.New("failed to load ticker list")
)

// Cache errors represent failures of the optional price cache.
// They are logged and bypassed by the price provider.
var (
	ErrCacheMiss          = errors.New("price cache miss")
	ErrFailedToReadCache  = errors.New("failed to read price cache")
	ErrFailedToWriteCache = errors.New("failed to write price cache")
)
