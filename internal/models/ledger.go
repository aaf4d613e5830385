package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is one entry of the tenant-independent chart of accounts.
type Account struct {
	Number      string `db:"number"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

// VatCode is a jurisdiction-specific tax rate identifier.
type VatCode struct {
	Code        string  `db:"code"`
	Description string  `db:"description"`
	Rate        float64 `db:"rate"`
	VatType     string  `db:"vat_type"`
}

// Voucher is a balanced double-entry record. ExtractionID links back to
// the AI extraction it was generated from, if any.
type Voucher struct {
	ID           uuid.UUID  `db:"id"`
	TenantID     uuid.UUID  `db:"tenant_id"`
	Number       string     `db:"number"`
	Date         time.Time  `db:"date"`
	Description  string     `db:"description"`
	ExtractionID *uuid.UUID `db:"extraction_id"`
	CreatedAt    time.Time  `db:"created_at"`

	Postings []Posting
}

// Posting is one debit or credit leg of a voucher.
type Posting struct {
	ID            uuid.UUID `db:"id"`
	VoucherID     uuid.UUID `db:"voucher_id"`
	AccountNumber string    `db:"account_number"`
	Amount        float64   `db:"amount"`
	Currency      string    `db:"currency"`
	PostingDate   time.Time `db:"posting_date"`
	Description   string    `db:"description"`
	VatCode       *string   `db:"vat_code"`
	RowNumber     int       `db:"row_number"`
}
