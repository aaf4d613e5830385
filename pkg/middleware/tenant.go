package middleware

import (
	"context"

	"voucherflow/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TenantHeader carries the tenant slug on every API request.
const TenantHeader = "X-Tenant-Slug"

const tenantLocalKey = "tenant"

// TenantResolver looks a tenant up by slug.
type TenantResolver interface {
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

// TenantMiddleware resolves the tenant slug header and stores the tenant
// in request locals. Unknown or missing slugs get the same response so
// slugs cannot be enumerated.
func TenantMiddleware(tenants TenantResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Get(TenantHeader)
		if slug == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Company not found",
			})
		}

		tenant, err := tenants.FindBySlug(c.Context(), slug)
		if err != nil {
			logger.Warn("Tenant resolution failed", zap.String("slug", slug), zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Company not found",
			})
		}

		c.Locals(tenantLocalKey, tenant)
		return c.Next()
	}
}

// TenantFromCtx returns the tenant stored by TenantMiddleware.
func TenantFromCtx(c *fiber.Ctx) (*models.Tenant, bool) {
	tenant, ok := c.Locals(tenantLocalKey).(*models.Tenant)
	return tenant, ok
}
