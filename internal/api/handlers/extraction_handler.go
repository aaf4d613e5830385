package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"voucherflow/internal/dto"
	"voucherflow/internal/models"
	"voucherflow/internal/repository"
	"voucherflow/internal/service"
	"voucherflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExtractionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Extraction, error)
}

type VoucherBuilder interface {
	CreateFromExtraction(ctx context.Context, tenantID, extractionID uuid.UUID) (*models.Voucher, error)
}

type VoucherFinder interface {
	FindVoucher(ctx context.Context, tenantID, id uuid.UUID) (*models.Voucher, error)
}

type ExtractionHandler struct {
	extractions ExtractionReader
	documents   service.DocumentOwnerResolver
	builder     VoucherBuilder
	ledger      VoucherFinder
	logger      *zap.Logger
}

func NewExtractionHandler(extractions ExtractionReader, documents service.DocumentOwnerResolver, builder VoucherBuilder, ledger VoucherFinder, logger *zap.Logger) *ExtractionHandler {
	return &ExtractionHandler{
		extractions: extractions,
		documents:   documents,
		builder:     builder,
		ledger:      ledger,
		logger:      logger,
	}
}

func (h *ExtractionHandler) GetExtraction(c *fiber.Ctx) error {
	tenant, ok := middleware.TenantFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Company not found",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid extraction ID",
		})
	}

	ext, err := h.extractions.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Extraction not found",
			})
		}
		h.logger.Error("Failed to load extraction", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load extraction",
		})
	}

	// Ownership check via the parent document.
	owner, err := h.documents.GetOwner(c.Context(), ext.DocumentID)
	if err != nil || owner != tenant.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Extraction not found",
		})
	}

	resp := dto.NewExtractionResponse(ext)
	// Normalize legacy payloads so clients always see the current schema.
	if data, err := service.DecodeStoredInvoiceData(ext.Data); err == nil {
		if normalized, err := json.Marshal(data); err == nil {
			resp.Data = normalized
		}
	}

	return c.JSON(resp)
}

// CreateVoucher converts a completed extraction into a voucher.
func (h *ExtractionHandler) CreateVoucher(c *fiber.Ctx) error {
	tenant, ok := middleware.TenantFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Company not found",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid extraction ID",
		})
	}

	voucher, err := h.builder.CreateFromExtraction(c.Context(), tenant.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExtractionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Extraction not found",
			})
		case errors.Is(err, service.ErrExtractionNotCompleted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Extraction is not in COMPLETED status",
			})
		default:
			h.logger.Error("Failed to create voucher from extraction", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create voucher",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewVoucherResponse(voucher))
}

func (h *ExtractionHandler) GetVoucher(c *fiber.Ctx) error {
	tenant, ok := middleware.TenantFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Company not found",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid voucher ID",
		})
	}

	voucher, err := h.ledger.FindVoucher(c.Context(), tenant.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Voucher not found",
			})
		}
		h.logger.Error("Failed to load voucher", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load voucher",
		})
	}

	return c.JSON(dto.NewVoucherResponse(voucher))
}
