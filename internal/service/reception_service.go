package service

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"voucherflow/internal/models"
	"voucherflow/internal/worker"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const pdfMimetype = "application/pdf"

type AttachmentStore interface {
	Create(ctx context.Context, attachment *models.Attachment) error
}

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Document, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Document, error)
	UpdateExtractionState(ctx context.Context, id uuid.UUID, status models.ExtractionStatus, extractedAt *time.Time, processingError *string) error
}

type ExtractionWriter interface {
	Create(ctx context.Context, ext *models.Extraction) error
}

// InvoiceExtractor runs the PDF-to-InvoiceData pipeline.
type InvoiceExtractor interface {
	ExtractFromFile(ctx context.Context, path string) (*InvoiceData, error)
}

// TaskSubmitter enqueues background work.
type TaskSubmitter interface {
	Submit(name string, task worker.Task) (*worker.Handle, error)
}

// AutoVoucherCreator converts a completed extraction into a voucher.
type AutoVoucherCreator interface {
	CreateFromExtraction(ctx context.Context, tenantID, extractionID uuid.UUID) (*models.Voucher, error)
}

// ReceptionService is the ingestion orchestrator. It persists incoming
// files synchronously, then hands PDF documents to the background pool for
// extraction and voucher auto-creation.
type ReceptionService struct {
	attachments AttachmentStore
	documents   DocumentStore
	extractions ExtractionWriter
	extractor   InvoiceExtractor
	vouchers    AutoVoucherCreator
	pool        TaskSubmitter
	tempDir     string
	logger      *zap.Logger
}

func NewReceptionService(
	attachments AttachmentStore,
	documents DocumentStore,
	extractions ExtractionWriter,
	extractor InvoiceExtractor,
	vouchers AutoVoucherCreator,
	pool TaskSubmitter,
	tempDir string,
	logger *zap.Logger,
) *ReceptionService {
	return &ReceptionService{
		attachments: attachments,
		documents:   documents,
		extractions: extractions,
		extractor:   extractor,
		vouchers:    vouchers,
		pool:        pool,
		tempDir:     tempDir,
		logger:      logger,
	}
}

type IncomingDocument struct {
	Filename    string
	Mimetype    string
	Data        []byte
	SenderEmail string
}

// SaveDocument persists the attachment and document synchronously. PDF
// documents are additionally queued for extraction; other mime types are
// stored as-is and never enter the pipeline.
func (s *ReceptionService) SaveDocument(ctx context.Context, tenantID uuid.UUID, in IncomingDocument) (*models.Document, error) {
	attachment := &models.Attachment{
		ID:        uuid.New(),
		Filename:  in.Filename,
		Mimetype:  in.Mimetype,
		SizeBytes: int64(len(in.Data)),
		Data:      in.Data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, eris.Wrap(err, "reception: save attachment")
	}

	status := models.ExtractionStatusNone
	if in.Mimetype == pdfMimetype {
		status = models.ExtractionStatusPending
	}

	doc := &models.Document{
		ID:               uuid.New(),
		TenantID:         tenantID,
		AttachmentID:     attachment.ID,
		SenderEmail:      in.SenderEmail,
		ReceivedAt:       time.Now().UTC(),
		ExtractionStatus: status,
		Filename:         in.Filename,
		Mimetype:         in.Mimetype,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, eris.Wrap(err, "reception: save document")
	}

	s.logger.Info("Document received",
		zap.String("document_id", doc.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("filename", in.Filename),
		zap.String("mimetype", in.Mimetype),
		zap.Int("size_bytes", len(in.Data)),
	)

	if status == models.ExtractionStatusPending {
		docID := doc.ID
		data := in.Data
		_, err := s.pool.Submit("extract-invoice", func(taskCtx context.Context) error {
			s.processDocument(taskCtx, tenantID, docID, data)
			return nil
		})
		if err != nil {
			// The document is already persisted; record the dropped
			// extraction instead of failing the upload.
			s.recordFailure(ctx, docID, eris.Wrap(err, "reception: enqueue extraction"))
		}
	}

	return doc, nil
}

func (s *ReceptionService) FindDocument(ctx context.Context, tenantID, id uuid.UUID) (*models.Document, error) {
	return s.documents.GetByID(ctx, tenantID, id)
}

func (s *ReceptionService) ListDocuments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	return s.documents.ListByTenant(ctx, tenantID, limit, offset)
}

// processDocument is the background task body. Every failure is converted
// into a FAILED extraction row; nothing escapes.
func (s *ReceptionService) processDocument(ctx context.Context, tenantID, documentID uuid.UUID, pdfData []byte) {
	if err := s.documents.UpdateExtractionState(ctx, documentID, models.ExtractionStatusProcessing, nil, nil); err != nil {
		s.logger.Error("Failed to mark document processing",
			zap.String("document_id", documentID.String()),
			zap.Error(err),
		)
	}

	tmp, err := os.CreateTemp(s.tempDir, "invoice-*.pdf")
	if err != nil {
		s.recordFailure(ctx, documentID, eris.Wrap(err, "reception: create temp file"))
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(pdfData); err != nil {
		tmp.Close()
		s.recordFailure(ctx, documentID, eris.Wrap(err, "reception: write temp file"))
		return
	}
	if err := tmp.Close(); err != nil {
		s.recordFailure(ctx, documentID, eris.Wrap(err, "reception: close temp file"))
		return
	}

	data, err := s.extractor.ExtractFromFile(ctx, tmpPath)
	if err != nil {
		s.recordFailure(ctx, documentID, err)
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		s.recordFailure(ctx, documentID, eris.Wrap(err, "reception: encode extraction"))
		return
	}

	now := time.Now().UTC()
	ext := &models.Extraction{
		ID:             uuid.New(),
		DocumentID:     documentID,
		Data:           payload,
		Status:         models.ExtractionStatusCompleted,
		ExtractionDate: &now,
		CreatedAt:      now,
	}
	if err := s.extractions.Create(ctx, ext); err != nil {
		s.logger.Error("Failed to persist extraction",
			zap.String("document_id", documentID.String()),
			zap.Error(err),
		)
		return
	}
	if err := s.documents.UpdateExtractionState(ctx, documentID, models.ExtractionStatusCompleted, &now, nil); err != nil {
		s.logger.Error("Failed to mirror extraction status",
			zap.String("document_id", documentID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Extraction completed",
		zap.String("document_id", documentID.String()),
		zap.String("extraction_id", ext.ID.String()),
	)

	// Voucher auto-creation is best effort. A failure here leaves the
	// extraction COMPLETED for manual conversion.
	if _, err := s.vouchers.CreateFromExtraction(ctx, tenantID, ext.ID); err != nil {
		s.logger.Warn("Automatic voucher creation failed",
			zap.String("extraction_id", ext.ID.String()),
			zap.Error(err),
		)
	}
}

// recordFailure writes a FAILED extraction row carrying the error message
// and mirrors it onto the document.
func (s *ReceptionService) recordFailure(ctx context.Context, documentID uuid.UUID, cause error) {
	now := time.Now().UTC()
	message := cause.Error()

	ext := &models.Extraction{
		ID:              uuid.New(),
		DocumentID:      documentID,
		Data:            []byte("{}"),
		Status:          models.ExtractionStatusFailed,
		ExtractionDate:  &now,
		ProcessingError: &message,
		CreatedAt:       now,
	}
	if err := s.extractions.Create(ctx, ext); err != nil {
		s.logger.Error("Failed to persist failed extraction",
			zap.String("document_id", documentID.String()),
			zap.Error(err),
		)
	}
	if err := s.documents.UpdateExtractionState(ctx, documentID, models.ExtractionStatusFailed, &now, &message); err != nil {
		s.logger.Error("Failed to mirror extraction failure",
			zap.String("document_id", documentID.String()),
			zap.Error(err),
		)
	}

	s.logger.Error("Document extraction failed",
		zap.String("document_id", documentID.String()),
		zap.String("error_message", message),
	)
}
