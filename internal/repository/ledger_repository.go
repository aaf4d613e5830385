package repository

import (
	"context"
	"errors"

	"voucherflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// LedgerRepository serves the chart of accounts and the VAT table. Both are
// tenant-independent reference data in this system.
type LedgerRepository struct {
	db     DB
	logger *zap.Logger
}

func NewLedgerRepository(db DB, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *LedgerRepository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	query := squirrel.Select("number", "name", "description").
		From("accounts").
		OrderBy("number").
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

	var accounts []models.Account
	for rows.Next() {
		var acc models.Account
		if err := rows.Scan(&acc.Number, &acc.Name, &acc.Description); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

func (r *LedgerRepository) FindAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	query := squirrel.Select("number", "name", "description").
		From("accounts").
		Where(squirrel.Eq{"number": number}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var acc models.Account
	err = r.db.QueryRow(ctx, sql, args...).Scan(&acc.Number, &acc.Name, &acc.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &acc, nil
}

func (r *LedgerRepository) CreateAccount(ctx context.Context, acc *models.Account) error {
	query := squirrel.Insert("accounts").
		Columns("number", "name", "description").
		Values(acc.Number, acc.Name, acc.Description).
		Suffix("ON CONFLICT (number) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *LedgerRepository) ListVatCodes(ctx context.Context) ([]models.VatCode, error) {
	query := squirrel.Select("code", "description", "rate", "vat_type").
		From("vat_codes").
		OrderBy("code").
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

	var codes []models.VatCode
	for rows.Next() {
		var vc models.VatCode
		if err := rows.Scan(&vc.Code, &vc.Description, &vc.Rate, &vc.VatType); err != nil {
			return nil, err
		}
		codes = append(codes, vc)
	}

	return codes, rows.Err()
}

func (r *LedgerRepository) CreateVatCode(ctx context.Context, vc *models.VatCode) error {
	query := squirrel.Insert("vat_codes").
		Columns("code", "description", "rate", "vat_type").
		Values(vc.Code, vc.Description, vc.Rate, vc.VatType).
		Suffix("ON CONFLICT (code) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
