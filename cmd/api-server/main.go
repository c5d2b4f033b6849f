package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cardvault/internal/notify"
	"cardvault/internal/pricing"
	"cardvault/internal/store"
	pricesync "cardvault/internal/sync"
	"cardvault/pkg/database"
	"cardvault/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := utils.LoadServerConfig()

	st := store.MustOpen(database.DefaultConfig())
	log.Printf("[store] loaded %d cards from %s", st.Count(), st.Path())

	tables, err := pricing.LoadTables(cfg.TablesPath)
	if err != nil {
		log.Fatalf("[tables] %v", err)
	}
	if cfg.TablesPath != "" {
		log.Printf("[tables] loaded overrides from %s", cfg.TablesPath)
	}

	estimator := pricing.NewEstimator(st, pricing.NewCalculator(tables))

	hub := pricesync.NewHub()
	feed := pricesync.NewServer(cfg.SyncAddr, hub)

	registry := notify.NewRegistry()
	notifier := notify.NewServer(cfg.NotifyAddr, registry, log.Default())

	router := buildRouter(st, hub, estimator, tables)
	httpServer := &http.Server{Addr: cfg.Addr, Handler: router}

	errCh := make(chan error, 3)

	go func() {
		log.Printf("[api] listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		if err := feed.Run(); err != nil {
			errCh <- err
		}
	}()

	go func() {
		if err := notifier.Run(); err != nil {
			errCh <- err
		}
	}()

	// Periodic staleness sweep: push re-verification worklists to any
	// registered UDP clients.
	stopSweeper := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				entries := st.Stale(cfg.StaleDays)
				if len(entries) > 0 {
					log.Printf("[sweeper] %d stale price entries older than %d days", len(entries), cfg.StaleDays)
					notifier.BroadcastStale(entries)
				}
			case <-stopSweeper:
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Printf("[api] fatal: %v", err)
	case sig := <-quit:
		log.Printf("[api] received %s, shutting down", sig)
	}

	close(stopSweeper)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("[api] shutdown error: %v", err)
	}
	log.Println("[api] stopped")
}

func buildRouter(st *store.Store, hub *pricesync.Hub, estimator *pricing.Estimator, tables *pricing.Tables) *gin.Engine {
	router := gin.Default()

	storeHandler := store.NewHandler(st, hub)
	pricingHandler := pricing.NewHandler(estimator, st, tables)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"store":  st.Path(),
			"cards":  st.Count(),
			"feed":   hub.Stats(),
		})
	})

	router.POST("/estimate", pricingHandler.Estimate)
	router.POST("/estimate/all", pricingHandler.EstimateAll)
	router.POST("/estimate/grading", pricingHandler.EstimateGrading)
	router.GET("/export", pricingHandler.Export)

	router.GET("/cards", storeHandler.List)
	router.GET("/cards/:key", storeHandler.Get)
	router.POST("/cards", storeHandler.Upsert)
	router.PUT("/cards/:key/prices/:grade", storeHandler.UpdatePrice)
	router.DELETE("/cards/:key", storeHandler.Remove)
	router.GET("/stale", storeHandler.Stale)
	router.GET("/stats", storeHandler.Stats)

	router.GET("/ws", pricesync.WSHandler(hub))

	return router
}
