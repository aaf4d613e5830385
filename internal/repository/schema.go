package repository

import (
	"context"

	"go.uber.org/zap"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id UUID PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id UUID PRIMARY KEY,
		filename TEXT NOT NULL,
		mimetype TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		data BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS voucher_reception_documents (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL REFERENCES tenants(id),
		attachment_id UUID NOT NULL REFERENCES attachments(id),
		sender_email TEXT NOT NULL,
		received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		extraction_status TEXT NOT NULL DEFAULT 'NONE',
		extraction_date TIMESTAMPTZ,
		processing_error TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_extractions (
		id UUID PRIMARY KEY,
		document_id UUID NOT NULL UNIQUE REFERENCES voucher_reception_documents(id),
		data JSONB NOT NULL,
		status TEXT NOT NULL,
		extraction_date TIMESTAMPTZ,
		processing_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		number TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS vat_codes (
		code TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		rate DOUBLE PRECISION NOT NULL,
		vat_type TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS vouchers (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL REFERENCES tenants(id),
		number TEXT NOT NULL,
		date DATE NOT NULL,
		description TEXT NOT NULL,
		extraction_id UUID REFERENCES invoice_extractions(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS postings (
		id UUID PRIMARY KEY,
		voucher_id UUID NOT NULL REFERENCES vouchers(id),
		account_number TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		currency TEXT NOT NULL,
		posting_date DATE NOT NULL,
		description TEXT NOT NULL,
		vat_code TEXT,
		row_number INT NOT NULL
	)`,
}

// EnsureSchema creates all tables idempotently. The statements are ordered
// so foreign keys resolve.
func EnsureSchema(ctx context.Context, db DB, logger *zap.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	logger.Info("Database schema ensured")
	return nil
}
