package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/backtest"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/pricing"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/stats"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/version"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Portfolio backtest backend %s", version.Version)

	catalog, err := metrics.Load(cfg.Data.Dir)
	if err != nil {
		log.Fatalf("Failed to load metric catalog: %v", err)
	}

	tickers, err := service.LoadTickers(cfg.Data.TickerListPath)
	if err != nil {
		log.Fatalf("Failed to load ticker list: %v", err)
	}

	yahooClient := yahoo.NewFinanceClientWithURLs(cfg.Yahoo.ChartURL, cfg.Yahoo.SearchURL)
	var source pricing.Source = pricing.NewYahooSource(yahooClient)

	// Open the price cache
	var db *sql.DB
	var maintenance *service.MaintenanceService
	if cfg.Database.Enabled {
		db, err = database.Open(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to open price cache: %v", err)
		}
		defer db.Close()

		log.Printf("Connected to price cache: %s", cfg.Database.Path)

		priceRepo := repository.NewPriceRepository(db)
		source = pricing.NewCachedSource(source, priceRepo, cfg.Database.TTL)

		maintenance = service.NewMaintenanceService(priceRepo, cfg.Database.TTL)
		if err := maintenance.Start(cfg.Database.PruneSchedule); err != nil {
			log.Fatalf("Failed to schedule cache pruning: %v", err)
		}
	}

	// Create services
	systemService := service.NewSystemService(db)
	backtestService := service.NewBacktestService(
		pricing.NewProvider(source, cfg.Backtest.FetchConcurrency),
		backtest.NewSimulator(cfg.Backtest.InitialCapital),
		stats.NewEngine(cfg.Backtest.RiskFreeRate),
		catalog,
		cfg.Backtest.Timeout,
	)
	searchService := service.NewSearchService(tickers, yahooClient)

	// Create router
	router := api.NewRouter(systemService, backtestService, searchService, catalog, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backtest.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if maintenance != nil {
		select {
		case <-maintenance.Stop().Done():
		case <-ctx.Done():
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return
	}

	log.Println("Server exited")
}
