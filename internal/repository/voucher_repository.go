package repository

import (
	"context"
	"errors"
	"fmt"

	"voucherflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VoucherRepository struct {
	db     DB
	logger *zap.Logger
}

func NewVoucherRepository(db DB, logger *zap.Logger) *VoucherRepository {
	return &VoucherRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores the voucher and its postings in one transaction.
func (r *VoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	voucherQuery := squirrel.Insert("vouchers").
		Columns("id", "tenant_id", "number", "date", "description", "extraction_id", "created_at").
		Values(voucher.ID, voucher.TenantID, voucher.Number, voucher.Date, voucher.Description, voucher.ExtractionID, voucher.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := voucherQuery.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	if len(voucher.Postings) > 0 {
		builder := squirrel.Insert("postings").
			Columns("id", "voucher_id", "account_number", "amount", "currency", "posting_date", "description", "vat_code", "row_number").
			PlaceholderFormat(squirrel.Dollar)

		for _, p := range voucher.Postings {
			builder = builder.Values(p.ID, p.VoucherID, p.AccountNumber, p.Amount, p.Currency, p.PostingDate, p.Description, p.VatCode, p.RowNumber)
		}

		sql, args, err = builder.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *VoucherRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Voucher, error) {
	query := squirrel.Select("id", "tenant_id", "number", "date", "description", "extraction_id", "created_at").
		From("vouchers").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var voucher models.Voucher
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&voucher.ID, &voucher.TenantID, &voucher.Number, &voucher.Date,
		&voucher.Description, &voucher.ExtractionID, &voucher.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	postings, err := r.listPostings(ctx, id)
	if err != nil {
		return nil, err
	}
	voucher.Postings = postings

	return &voucher, nil
}

func (r *VoucherRepository) listPostings(ctx context.Context, voucherID uuid.UUID) ([]models.Posting, error) {
	query := squirrel.Select("id", "voucher_id", "account_number", "amount", "currency", "posting_date", "description", "vat_code", "row_number").
		From("postings").
		Where(squirrel.Eq{"voucher_id": voucherID}).
		OrderBy("row_number").
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

	var postings []models.Posting
	for rows.Next() {
		var p models.Posting
		if err := rows.Scan(
			&p.ID, &p.VoucherID, &p.AccountNumber, &p.Amount, &p.Currency,
			&p.PostingDate, &p.Description, &p.VatCode, &p.RowNumber,
		); err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}

	return postings, rows.Err()
}

// NextNumber assigns voucher numbers sequentially per tenant.
func (r *VoucherRepository) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	query := squirrel.Select("COUNT(*)").
		From("vouchers").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return "", err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", count+1), nil
}
