package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voucherflow/internal/api"
	"voucherflow/internal/api/handlers"
	"voucherflow/internal/repository"
	"voucherflow/internal/service"
	"voucherflow/internal/worker"
	"voucherflow/pkg/config"
	"voucherflow/pkg/logger"
	"voucherflow/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting voucherflow service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.EnsureSchema(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db, appLogger)
	attachmentRepo := repository.NewAttachmentRepository(db, appLogger)
	documentRepo := repository.NewDocumentRepository(db, appLogger)
	extractionRepo := repository.NewExtractionRepository(db, appLogger)
	ledgerRepo := repository.NewLedgerRepository(db, appLogger)
	voucherRepo := repository.NewVoucherRepository(db, appLogger)

	// Background extraction pool
	pool := worker.NewPool(cfg.Extraction.Workers, cfg.Extraction.QueueSize, appLogger)
	poolCtx, poolCancel := context.WithCancel(ctx)
	defer poolCancel()
	pool.Start(poolCtx)

	// Initialize services
	pdfService := service.NewPDFService(appLogger)
	llmService := service.NewLLMService(&cfg.OpenAI, appLogger)
	categorizationService := service.NewCategorizationService(ledgerRepo, appLogger)
	extractionService := service.NewExtractionService(pdfService, llmService, categorizationService, appLogger)
	voucherService := service.NewVoucherService(voucherRepo, appLogger)
	voucherCreationService := service.NewVoucherCreationService(extractionRepo, documentRepo, voucherService, appLogger)
	receptionService := service.NewReceptionService(
		attachmentRepo, documentRepo, extractionRepo,
		extractionService, voucherCreationService, pool,
		cfg.Extraction.TempDir, appLogger,
	)

	// Initialize handlers
	receptionHandler := handlers.NewReceptionHandler(receptionService, appLogger)
	extractionHandler := handlers.NewExtractionHandler(extractionRepo, documentRepo, voucherCreationService, voucherService, appLogger)

	// Setup router
	app := api.SetupRouter(receptionHandler, extractionHandler, tenantRepo, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	// Let in-flight extractions drain before the process exits.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	if err := pool.Shutdown(drainCtx); err != nil {
		appLogger.Error("Worker pool shutdown error", zap.Error(err))
	}
}
