package api

import (
	"voucherflow/internal/api/handlers"
	"voucherflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	receptionHandler *handlers.ReceptionHandler,
	extractionHandler *handlers.ExtractionHandler,
	tenants middleware.TenantResolver,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Tenant-Slug",
	}))
	app.Use(logger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	tenantScoped := middleware.TenantMiddleware(tenants, appLogger)

	// Mail-provider webhook
	app.Post("/api/voucher-reception", tenantScoped, receptionHandler.ReceiveEmailDocument)

	// API routes
	v1 := app.Group("/api/v1", tenantScoped)

	reception := v1.Group("/voucher-reception")
	reception.Post("/upload", receptionHandler.UploadDocument)
	reception.Get("", receptionHandler.ListDocuments)
	reception.Get("/:id", receptionHandler.GetDocument)

	extractions := v1.Group("/extractions")
	extractions.Get("/:id", extractionHandler.GetExtraction)
	extractions.Post("/:id/voucher", extractionHandler.CreateVoucher)

	v1.Get("/vouchers/:id", extractionHandler.GetVoucher)

	return app
}
