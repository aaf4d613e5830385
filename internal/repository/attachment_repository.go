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

type AttachmentRepository struct {
	db     DB
	logger *zap.Logger
}

func NewAttachmentRepository(db DB, logger *zap.Logger) *AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AttachmentRepository) Create(ctx context.Context, att *models.Attachment) error {
	query := squirrel.Insert("attachments").
		Columns("id", "filename", "mimetype", "size_bytes", "data", "created_at").
		Values(att.ID, att.Filename, att.Mimetype, att.SizeBytes, att.Data, att.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	query := squirrel.Select("id", "filename", "mimetype", "size_bytes", "data", "created_at").
		From("attachments").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var att models.Attachment
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&att.ID, &att.Filename, &att.Mimetype, &att.SizeBytes, &att.Data, &att.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &att, nil
}
