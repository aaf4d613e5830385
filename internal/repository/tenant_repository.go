package repository

import (
	"context"
	"errors"

	"voucherflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type TenantRepository struct {
	db     DB
	logger *zap.Logger
}

func NewTenantRepository(db DB, logger *zap.Logger) *TenantRepository {
	return &TenantRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := squirrel.Insert("tenants").
		Columns("id", "slug", "name", "created_at").
		Values(tenant.ID, tenant.Slug, tenant.Name, tenant.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TenantRepository) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := squirrel.Select("id", "slug", "name", "created_at").
		From("tenants").
		Where(squirrel.Eq{"slug": slug}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var tenant models.Tenant
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&tenant.ID, &tenant.Slug, &tenant.Name, &tenant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &tenant, nil
}
