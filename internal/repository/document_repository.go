package repository

import (
	"context"
	"errors"
	"time"

	"voucherflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DocumentRepository struct {
	db     DB
	logger *zap.Logger
}

func NewDocumentRepository(db DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

var documentColumns = []string{
	"d.id", "d.tenant_id", "d.attachment_id", "d.sender_email", "d.received_at",
	"d.extraction_status", "d.extraction_date", "d.processing_error",
	"a.filename", "a.mimetype",
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := squirrel.Insert("voucher_reception_documents").
		Columns("id", "tenant_id", "attachment_id", "sender_email", "received_at", "extraction_status").
		Values(doc.ID, doc.TenantID, doc.AttachmentID, doc.SenderEmail, doc.ReceivedAt, doc.ExtractionStatus).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("voucher_reception_documents d").
		Join("attachments a ON a.id = d.attachment_id").
		Where(squirrel.Eq{"d.id": id, "d.tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var doc models.Document
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&doc.ID, &doc.TenantID, &doc.AttachmentID, &doc.SenderEmail, &doc.ReceivedAt,
		&doc.ExtractionStatus, &doc.ExtractionDate, &doc.ProcessingError,
		&doc.Filename, &doc.Mimetype,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &doc, nil
}

func (r *DocumentRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("voucher_reception_documents d").
		Join("attachments a ON a.id = d.attachment_id").
		Where(squirrel.Eq{"d.tenant_id": tenantID}).
		OrderBy("d.received_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID, &doc.TenantID, &doc.AttachmentID, &doc.SenderEmail, &doc.ReceivedAt,
			&doc.ExtractionStatus, &doc.ExtractionDate, &doc.ProcessingError,
			&doc.Filename, &doc.Mimetype,
		); err != nil {
			return nil, err
		}
		documents = append(documents, &doc)
	}

	return documents, rows.Err()
}

// GetOwner resolves the tenant a document belongs to without loading the
// attachment join.
func (r *DocumentRepository) GetOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	query := squirrel.Select("tenant_id").
		From("voucher_reception_documents").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var tenantID uuid.UUID
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&tenantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}

	return tenantID, nil
}

// UpdateExtractionState mirrors the extraction outcome onto the document row.
func (r *DocumentRepository) UpdateExtractionState(ctx context.Context, id uuid.UUID, status models.ExtractionStatus, extractedAt *time.Time, processingError *string) error {
	query := squirrel.Update("voucher_reception_documents").
		Set("extraction_status", status).
		Set("extraction_date", extractedAt).
		Set("processing_error", processingError).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
