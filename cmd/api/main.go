package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/verse-companion-api/internal/config"
	"github.com/verse-companion-api/internal/handlers"
	"github.com/verse-companion-api/internal/index"
	"github.com/verse-companion-api/internal/middleware"
	"github.com/verse-companion-api/internal/repository"
	"github.com/verse-companion-api/internal/repository/postgres"
	"github.com/verse-companion-api/internal/repository/sqlite"
	"github.com/verse-companion-api/internal/services"
	pkgconfig "github.com/verse-companion-api/pkg/schema/config"
	"github.com/verse-companion-api/pkg/schema/db"
	pkgservices "github.com/verse-companion-api/pkg/schema/services"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Get configuration
	cfg := config.GetConfig()
	pkgCfg := pkgconfig.GetConfig()

	// Shutdown signal doubles as the cancellation signal for a rebuild in
	// flight; the last persisted snapshot stays authoritative.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware())

	// Create the corpus repository based on configuration
	var (
		corpusRepo repository.CorpusRepository
		sqliteRepo *sqlite.CorpusRepository // For cleanup
	)

	switch cfg.CorpusBackend {
	case "postgres":
		log.Println("Using PostgreSQL corpus backend")
		if err := db.InitPostgres(ctx); err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		corpusRepo = postgres.NewCorpusRepository(db.GetPostgres())
	default:
		log.Printf("Using SQLite corpus backend at %s", cfg.SQLitePath)
		var err error
		sqliteRepo, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite corpus: %v", err)
		}
		corpusRepo = sqliteRepo
	}

	// Create the embeddings service; an unavailable backend is not fatal,
	// retrieval degrades to the fallback scan.
	embeddingsSvc := pkgservices.GetEmbeddingsService()

	// Create the index and establish readiness
	store := index.NewStore()
	snapshot := index.NewSnapshot(cfg.EmbeddingsDir)
	builder := index.NewBuilder(store, snapshot, corpusRepo, embeddingsSvc, cfg.IndexVersion, pkgCfg.ModelID())

	if err := builder.EnsureReady(ctx); err != nil {
		log.Printf("Index initialization failed, serving from fallback: %v", err)
	}

	retrievalSvc := services.NewRetrievalService(store, snapshot, embeddingsSvc, corpusRepo)

	// Create API group with prefix
	api := e.Group(cfg.APIPrefix)

	// Register handlers
	healthHandler := handlers.NewHealthHandler(corpusRepo, embeddingsSvc)
	healthHandler.RegisterRoutes(api)

	recommendHandler := handlers.NewRecommendHandler(retrievalSvc)
	recommendHandler.RegisterRoutes(api)

	adminHandler := handlers.NewAdminHandler(builder, retrievalSvc)
	adminHandler.RegisterRoutes(api)

	// Root banner
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Starting %s v%s on %s", cfg.APITitle, cfg.APIVersion, addr)
		if err := e.Start(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	if err := embeddingsSvc.Close(); err != nil {
		log.Printf("Error closing embeddings service: %v", err)
	}

	switch cfg.CorpusBackend {
	case "postgres":
		if err := db.ClosePostgres(); err != nil {
			log.Printf("Error closing PostgreSQL: %v", err)
		}
	default:
		if sqliteRepo != nil {
			if err := sqliteRepo.Close(); err != nil {
				log.Printf("Error closing SQLite corpus: %v", err)
			}
		}
	}

	log.Println("Server stopped")
}
