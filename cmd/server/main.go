package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pricelens/engine/config"
	httpDelivery "github.com/pricelens/engine/internal/delivery/http"
	"github.com/pricelens/engine/internal/infrastructure/cache"
	"github.com/pricelens/engine/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceLens Engine v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Enable debug logging in development unless explicitly configured
	debug := cfg.Scoring.EnableDebugLogging
	if cfg.Server.Environment == "development" {
		debug = true
		log.Printf("Pipeline debug logging enabled")
	}

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	// Initialize the pipeline stages
	extractor := usecase.NewExtractor(usecase.ExtractorConfig{
		MinPrice:           cfg.Scoring.MinPrice,
		MaxPrice:           cfg.Scoring.MaxPrice,
		EnableDebugLogging: debug,
	})
	matcher := usecase.NewMatcher(usecase.MatcherConfig{
		EnableDebugLogging: debug,
	})
	validator := usecase.NewValidator(usecase.ValidatorConfig{
		AllowRefurbished:   cfg.Scoring.AllowRefurbished,
		MaxDeviation:       cfg.Scoring.MaxDeviation,
		MinPrice:           cfg.Scoring.MinPrice,
		MaxPrice:           cfg.Scoring.MaxPrice,
		EnableDebugLogging: debug,
	})
	scorer := usecase.NewScorer(usecase.ScorerConfig{
		EnableDebugLogging: debug,
	})

	offerService := usecase.NewOfferService(
		memoryCache,
		extractor,
		matcher,
		validator,
		scorer,
		usecase.OfferServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: debug,
		},
	)

	log.Printf("Scoring: allow_refurbished=%v, max_deviation=%.2f, price_range=[%.0f, %.0f]",
		cfg.Scoring.AllowRefurbished,
		cfg.Scoring.MaxDeviation,
		cfg.Scoring.MinPrice,
		cfg.Scoring.MaxPrice)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(offerService, matcher)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
