package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"io"

	"voucherflow/internal/dto"
	"voucherflow/internal/models"
	"voucherflow/internal/repository"
	"voucherflow/internal/service"
	"voucherflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentIngestor is the slice of the reception service the handler uses.
type DocumentIngestor interface {
	SaveDocument(ctx context.Context, tenantID uuid.UUID, in service.IncomingDocument) (*models.Document, error)
	FindDocument(ctx context.Context, tenantID, id uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Document, error)
}

type ReceptionHandler struct {
	reception DocumentIngestor
	logger    *zap.Logger
}

func NewReceptionHandler(reception DocumentIngestor, logger *zap.Logger) *ReceptionHandler {
	return &ReceptionHandler{
		reception: reception,
		logger:    logger,
	}
}

// ReceiveEmailDocument is the mail-provider webhook. The body carries the
// attachment as base64.
func (h *ReceptionHandler) ReceiveEmailDocument(c *fiber.Ctx) error {
	tenant, ok := middleware.TenantFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Company not found",
		})
	}

	var req dto.EmailDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid base64 data",
		})
	}

	doc, err := h.reception.SaveDocument(c.Context(), tenant.ID, service.IncomingDocument{
		Filename:    req.Filename,
		Mimetype:    req.MimeType,
		Data:        data,
		SenderEmail: req.SenderEmail,
	})
	if err != nil {
		h.logger.Error("Failed to save received document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save document",
		})
	}

	return c.JSON(dto.ReceivedResponse{
		ID:       doc.ID,
		Filename: doc.Filename,
		Status:   "received",
	})
}

// UploadDocument accepts one or more files from a multipart form, each
// under the repeated "file" field.
func (h *ReceptionHandler) UploadDocument(c *fiber.Ctx) error {
	tenant, ok := middleware.TenantFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Company not found",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Multipart form is required",
		})
	}

	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	senderEmail := c.FormValue("sender_email")
	saved := make([]dto.DocumentResponse, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to open file",
			})
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read file",
			})
		}

		mimetype := file.Header.Get("Content-Type")
		if mimetype == "" {
			mimetype = "application/octet-stream"
		}

		doc, err := h.reception.SaveDocument(c.Context(), tenant.ID, service.IncomingDocument{
			Filename:    file.Filename,
			Mimetype:    mimetype,
			Data:        data,
			SenderEmail: senderEmail,
		})
		if err != nil {
			h.logger.Error("Failed to save uploaded document", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save document",
			})
		}
		saved = append(saved, dto.NewDocumentResponse(doc))
	}

	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *ReceptionHandler) ListDocuments(c *fiber.Ctx) error {
	tenant, ok := middleware.TenantFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Company not found",
		})
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	docs, err := h.reception.ListDocuments(c.Context(), tenant.ID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list documents",
		})
	}

	return c.JSON(dto.NewDocumentListResponse(docs))
}

func (h *ReceptionHandler) GetDocument(c *fiber.Ctx) error {
	tenant, ok := middleware.TenantFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Company not found",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}

	doc, err := h.reception.FindDocument(c.Context(), tenant.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found",
			})
		}
		h.logger.Error("Failed to load document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load document",
		})
	}

	return c.JSON(dto.NewDocumentResponse(doc))
}
