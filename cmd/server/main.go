package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nftmart/nftmart-api/internal/cache"
	"github.com/nftmart/nftmart-api/internal/config"
	"github.com/nftmart/nftmart-api/internal/events"
	"github.com/nftmart/nftmart-api/internal/handlers"
	"github.com/nftmart/nftmart-api/internal/ledger"
	"github.com/nftmart/nftmart-api/internal/services"
	"github.com/nftmart/nftmart-api/internal/store"
	"github.com/nftmart/nftmart-api/pkg/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fees, err := ledger.NewFeeSchedule(cfg.Market.FeeBps)
	if err != nil {
		log.Fatalf("Invalid fee configuration: %v", err)
	}

	// The database mirrors the ledger for durability. Without one the
	// marketplace still runs, it just starts empty and settles balances
	// in memory.
	var (
		bank     ledger.Bank
		balances services.BalanceReader
		mirror   services.Mirror
		db       *store.Database
	)
	db, err = store.NewDatabase(cfg.Database)
	if err != nil {
		log.Printf("Database unavailable, running without persistence: %v", err)
		memBank := ledger.NewMemoryBank()
		bank, balances = memBank, memBank
	} else {
		defer db.Close()
		if err := db.Migrate(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		balanceRepo := store.NewBalanceRepository(db)
		bank, balances = balanceRepo, balanceRepo
		mirror = store.NewMirror(store.NewNftRepository(db), store.NewSaleRepository(db))
	}

	led, err := ledger.New(fees, cfg.Market.PlatformAddress, bank)
	if err != nil {
		log.Fatalf("Invalid market configuration: %v", err)
	}
	if m, ok := mirror.(*store.Mirror); ok && m != nil {
		nfts, sales, err := m.Load()
		if err != nil {
			log.Fatalf("Failed to load ledger state: %v", err)
		}
		led.Restore(nfts, sales)
		log.Printf("Restored %d nfts and %d sales", len(nfts), len(sales))
	}

	var readCache *cache.Cache
	if cfg.Redis.Addr != "" {
		readCache, err = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Duration(cfg.Redis.CacheTTLs)*time.Second)
		if err != nil {
			log.Printf("Redis unavailable, running without read cache: %v", err)
		} else {
			defer readCache.Close()
		}
	}

	walletService := services.NewWalletService()
	authService := services.NewAuthService(walletService, cfg.Auth)
	market := services.NewMarketService(led, mirror, balances, readCache)

	hub := handlers.NewHub()
	go hub.Run()
	market.AddSink(hub)

	if cfg.Nats.URL != "" {
		publisher, err := events.Connect(cfg.Nats.URL)
		if err != nil {
			log.Printf("NATS unavailable, running without event bus: %v", err)
		} else {
			defer publisher.Close()
			market.AddSink(publisher)
		}
	}

	router := handlers.NewRouter(market, authService, hub)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Record where this marketplace lives so clients can find it
	publicURL := cfg.Server.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if err := client.WriteDeployment(cfg.Server.DeploymentFile, publicURL); err != nil {
		log.Printf("Failed to write deployment record: %v", err)
	}

	go func() {
		log.Printf("Nftmart server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
