package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment holds the raw uploaded file. Documents reference it so the
// binary payload is only loaded when actually needed.
type Attachment struct {
	ID        uuid.UUID `db:"id"`
	Filename  string    `db:"filename"`
	Mimetype  string    `db:"mimetype"`
	SizeBytes int64     `db:"size_bytes"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

// Document is one received voucher file (email webhook or upload). The
// extraction fields mirror the latest Extraction row so listings do not
// have to join the payload table.
type Document struct {
	ID               uuid.UUID        `db:"id"`
	TenantID         uuid.UUID        `db:"tenant_id"`
	AttachmentID     uuid.UUID        `db:"attachment_id"`
	SenderEmail      string           `db:"sender_email"`
	ReceivedAt       time.Time        `db:"received_at"`
	ExtractionStatus ExtractionStatus `db:"extraction_status"`
	ExtractionDate   *time.Time       `db:"extraction_date"`
	ProcessingError  *string          `db:"processing_error"`

	// Denormalized attachment metadata, populated on reads.
	Filename string `db:"filename"`
	Mimetype string `db:"mimetype"`
}
