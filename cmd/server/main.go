package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codyseavey/mtgssm/internal/api"
	"github.com/codyseavey/mtgssm/internal/config"
	"github.com/codyseavey/mtgssm/internal/database"
	"github.com/codyseavey/mtgssm/internal/metrics"
	"github.com/codyseavey/mtgssm/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Load the card catalog and build the lookup index once; it is read-only afterwards
	scryfallService := services.NewScryfallService(cfg.ScryfallBaseURL)
	cards, err := scryfallService.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load card catalog: %v", err)
	}
	index := services.NewCatalogIndex(cards)
	metrics.CatalogCards.Set(float64(index.Len()))
	metrics.CatalogKeys.Set(float64(index.KeyCount()))
	log.Printf("Loaded %d cards from %d sets (%d lookup keys)", index.Len(), len(index.SetCodes()), index.KeyCount())

	aliases := services.DefaultSetAliases()
	if cfg.SetAliasesPath != "" {
		aliases, err = services.LoadSetAliases(cfg.SetAliasesPath)
		if err != nil {
			log.Fatalf("Failed to load set aliases: %v", err)
		}
	}

	// Initialize services
	matcher := services.NewLegacyMatcher(index, aliases, services.MultiObserver{services.LogObserver{}, services.MetricsObserver{}})
	coercer := services.NewLegacyCoercer(matcher, services.DefaultCountAliases())
	importService := services.NewImportService(coercer, cfg.ImportWorkers)
	collectionService := services.NewCollectionService(database.GetDB())

	// Setup router
	router, err := api.SetupRouter(cfg, index, matcher, importService, collectionService)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
