package main

import (
	"context"
	"log"
	"time"

	"voucherflow/internal/models"
	"voucherflow/internal/repository"
	"voucherflow/pkg/config"
	"voucherflow/pkg/logger"
	"voucherflow/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seeds a demo tenant plus the Norwegian chart-of-accounts subset and VAT
// codes the extraction pipeline relies on. Safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.EnsureSchema(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	tenantRepo := repository.NewTenantRepository(db, appLogger)
	ledgerRepo := repository.NewLedgerRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	demo := &models.Tenant{
		ID:        uuid.New(),
		Slug:      "demo",
		Name:      "Demo Regnskap AS",
		CreatedAt: time.Now().UTC(),
	}
	if err := tenantRepo.Create(ctx, demo); err != nil {
		appLogger.Warn("Demo tenant not created, may already exist", zap.Error(err))
	} else {
		appLogger.Info("Demo tenant created", zap.String("slug", demo.Slug))
	}

	accounts := []models.Account{
		{Number: "2400", Name: "Accounts Payable", Description: "Leverandørgjeld"},
		{Number: "4300", Name: "Purchase of Goods", Description: "Innkjøp av varer for videresalg"},
		{Number: "6200", Name: "Electricity", Description: "Elektrisitet"},
		{Number: "6300", Name: "Rent of Premises", Description: "Leie lokale"},
		{Number: "6540", Name: "Inventory", Description: "Inventar"},
		{Number: "6700", Name: "Audit and Accounting Fees", Description: "Revisjons- og regnskapshonorar"},
		{Number: "6790", Name: "Other External Services", Description: "Annen fremmed tjeneste"},
		{Number: "6900", Name: "Telephone", Description: "Telefon"},
		{Number: "7100", Name: "Travel Costs", Description: "Bilgodtgjørelse og reisekostnad"},
		{Number: "7320", Name: "Advertising Costs", Description: "Reklamekostnad"},
		{Number: "7500", Name: "Insurance Premiums", Description: "Forsikringspremie"},
	}
	for i := range accounts {
		if err := ledgerRepo.CreateAccount(ctx, &accounts[i]); err != nil {
			appLogger.Fatal("Failed to seed account", zap.String("number", accounts[i].Number), zap.Error(err))
		}
	}
	appLogger.Info("Accounts seeded", zap.Int("count", len(accounts)))

	vatCodes := []models.VatCode{
		{Code: "0", Description: "No VAT treatment", Rate: 0, VatType: "NONE"},
		{Code: "1", Description: "Input VAT deductible, high rate", Rate: 25, VatType: "INPUT"},
		{Code: "11", Description: "Input VAT deductible, medium rate", Rate: 15, VatType: "INPUT"},
		{Code: "13", Description: "Input VAT deductible, low rate", Rate: 12, VatType: "INPUT"},
	}
	for i := range vatCodes {
		if err := ledgerRepo.CreateVatCode(ctx, &vatCodes[i]); err != nil {
			appLogger.Fatal("Failed to seed VAT code", zap.String("code", vatCodes[i].Code), zap.Error(err))
		}
	}
	appLogger.Info("VAT codes seeded", zap.Int("count", len(vatCodes)))

	appLogger.Info("Database seeding completed successfully!")
}
