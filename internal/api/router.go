package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	backtestService *service.BacktestService,
	searchService *service.SearchService,
	catalog *metrics.Catalog,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		response.RespondJSON(w, http.StatusOK, map[string]string{"API_TEST": "OK"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		backtestHandler := handlers.NewBacktestHandler(backtestService)
		r.Post("/portfolios", backtestHandler.Backtest)

		r.Get("/metrics", handlers.NewMetricsHandler(catalog).Catalog)

		searchHandler := handlers.NewSearchHandler(searchService)
		r.Get("/keyword/{search}", searchHandler.Keyword)
		r.Get("/keyword/{search}/limit/{max}", searchHandler.KeywordLimit)
		r.Get("/yahoos_finance_stocks/{query}", searchHandler.YahooStocks)
	})

	return r
}
