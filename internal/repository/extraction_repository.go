package repository

import (
	"context"
	"errors"

	"voucherflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ExtractionRepository struct {
	db     DB
	logger *zap.Logger
}

func NewExtractionRepository(db DB, logger *zap.Logger) *ExtractionRepository {
	return &ExtractionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExtractionRepository) Create(ctx context.Context, ext *models.Extraction) error {
	query := squirrel.Insert("invoice_extractions").
		Columns("id", "document_id", "data", "status", "extraction_date", "processing_error", "created_at").
		Values(ext.ID, ext.DocumentID, ext.Data, ext.Status, ext.ExtractionDate, ext.ProcessingError, ext.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ExtractionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Extraction, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *ExtractionRepository) GetByDocumentID(ctx context.Context, documentID uuid.UUID) (*models.Extraction, error) {
	return r.getOne(ctx, squirrel.Eq{"document_id": documentID})
}

func (r *ExtractionRepository) getOne(ctx context.Context, pred squirrel.Eq) (*models.Extraction, error) {
	query := squirrel.Select("id", "document_id", "data", "status", "extraction_date", "processing_error", "created_at").
		From("invoice_extractions").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var ext models.Extraction
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&ext.ID, &ext.DocumentID, &ext.Data, &ext.Status, &ext.ExtractionDate, &ext.ProcessingError, &ext.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &ext, nil
}

func (r *ExtractionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExtractionStatus) error {
	query := squirrel.Update("invoice_extractions").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
