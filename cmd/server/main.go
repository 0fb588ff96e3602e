package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-tracker-go/internal/coingecko"
	"crypto-tracker-go/internal/config"
	"crypto-tracker-go/internal/database"
	"crypto-tracker-go/internal/logger"
	"crypto-tracker-go/internal/marketcache"
	"crypto-tracker-go/internal/refresher"
	"crypto-tracker-go/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Open the local state database and restore persisted user state
	db, err := database.NewDatabase(cfg.Store.DSN)
	if err != nil {
		log.Fatal("Failed to open state database", zap.Error(err))
	}

	st, err := store.New(store.NewGormRepository(db), cfg.Store.Name, log)
	if err != nil {
		log.Fatal("Failed to restore persisted state", zap.Error(err))
	}

	// Gateway and caching layer
	client := coingecko.NewClient(&cfg.CoinGecko, log)
	cache := marketcache.New(client, &cfg.Cache, log)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Background coin refresher
	interval := time.Duration(cfg.Refresher.IntervalSeconds) * time.Second
	go refresher.New(log, cache, st, interval, cfg.Refresher.PerPage).Run(ctx)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, cache)

	// API endpoints
	mux.HandleFunc("/api/coins", apiHandler.CoinsHandler)
	mux.HandleFunc("/api/coins/", apiHandler.CoinDetailHandler)
	mux.HandleFunc("/api/exchanges", apiHandler.ExchangesHandler)
	mux.HandleFunc("/api/market", apiHandler.MarketHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting web server", zap.String("address", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Web server failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
