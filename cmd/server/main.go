package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"invoflow/internal/cache"
	"invoflow/internal/config"
	"invoflow/internal/extractor"
	_ "invoflow/internal/extractor/claude"
	_ "invoflow/internal/extractor/openai"
	"invoflow/internal/handler"
	"invoflow/internal/port"
	"invoflow/internal/repository/postgres"
	"invoflow/internal/router"
	"invoflow/internal/service"
	s3storage "invoflow/internal/storage/s3"
	"invoflow/internal/textextract"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	vendorRepo := postgres.NewVendorRepo(db)
	promptRepo := postgres.NewPromptRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize document cache
	docCache, err := newDocumentCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize document cache: %w", err)
	}

	// Initialize extraction collaborators
	textExtract := textextract.New()
	aiExtract, err := extractor.New(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize AI extractor: %w", err)
	}

	// Initialize services
	promptSvc := service.NewPromptService(promptRepo, vendorRepo)
	vendorSvc := service.NewVendorService(vendorRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, fileRepo, s3Client)
	extractionSvc := service.NewExtractionService(
		docCache, textExtract, aiExtract,
		promptRepo, invoiceRepo, vendorRepo, fileRepo,
		s3Client, cfg,
	)

	// Initialize handlers
	vendorH := handler.NewVendorHandler(vendorSvc)
	promptH := handler.NewPromptHandler(promptSvc)
	extractionH := handler.NewExtractionHandler(extractionSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	healthH := handler.NewHealthHandler(db, docCache)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, vendorH, promptH, extractionH, invoiceH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// newDocumentCache picks the configured cache backend. The in-memory backend
// runs a background sweeper so expired test sessions do not pile up.
func newDocumentCache(cfg *config.Config) (port.DocumentCache, error) {
	switch cfg.Cache.Provider {
	case "redis":
		return cache.NewRedis(&cfg.Cache)
	case "memory", "":
		mem := cache.NewMemory()
		go mem.StartSweeper(context.Background(), time.Minute)
		return mem, nil
	default:
		return nil, fmt.Errorf("unknown cache provider: %s", cfg.Cache.Provider)
	}
}
