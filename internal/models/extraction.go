package models

import (
	"time"

	"github.com/google/uuid"
)

type ExtractionStatus string

const (
	// ExtractionStatusNone marks documents that never enter the pipeline,
	// such as non-PDF attachments.
	ExtractionStatusNone               ExtractionStatus = "NONE"
	ExtractionStatusPending            ExtractionStatus = "PENDING"
	ExtractionStatusProcessing         ExtractionStatus = "PROCESSING"
	ExtractionStatusCompleted          ExtractionStatus = "COMPLETED"
	ExtractionStatusFailed             ExtractionStatus = "FAILED"
	ExtractionStatusConvertedToVoucher ExtractionStatus = "CONVERTED_TO_VOUCHER"
)

// Extraction is the persisted outcome of one LLM extraction run, 1:1 with
// its Document. Data holds the validated InvoiceData as raw JSON.
type Extraction struct {
	ID              uuid.UUID        `db:"id"`
	DocumentID      uuid.UUID        `db:"document_id"`
	Data            []byte           `db:"data"`
	Status          ExtractionStatus `db:"status"`
	ExtractionDate  *time.Time       `db:"extraction_date"`
	ProcessingError *string          `db:"processing_error"`
	CreatedAt       time.Time        `db:"created_at"`
}
