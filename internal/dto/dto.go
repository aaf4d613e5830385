package dto

import (
	"encoding/json"
	"time"

	"voucherflow/internal/models"

	"github.com/google/uuid"
)

// EmailDocumentRequest is the inbound webhook payload from the mail
// provider. FileData is base64.
type EmailDocumentRequest struct {
	Filename    string `json:"filename"`
	MimeType    string `json:"mimeType"`
	FileData    string `json:"fileData"`
	SenderEmail string `json:"senderEmail"`
}

// ReceivedResponse acknowledges a webhook delivery.
type ReceivedResponse struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Status   string    `json:"status"`
}

type DocumentResponse struct {
	ID               uuid.UUID  `json:"id"`
	Filename         string     `json:"filename"`
	Mimetype         string     `json:"mimetype"`
	SenderEmail      string     `json:"sender_email"`
	ReceivedAt       time.Time  `json:"received_at"`
	ExtractionStatus string     `json:"extraction_status"`
	ExtractionDate   *time.Time `json:"extraction_date,omitempty"`
	ProcessingError  *string    `json:"processing_error,omitempty"`
}

func NewDocumentResponse(doc *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID,
		Filename:         doc.Filename,
		Mimetype:         doc.Mimetype,
		SenderEmail:      doc.SenderEmail,
		ReceivedAt:       doc.ReceivedAt,
		ExtractionStatus: string(doc.ExtractionStatus),
		ExtractionDate:   doc.ExtractionDate,
		ProcessingError:  doc.ProcessingError,
	}
}

func NewDocumentListResponse(docs []*models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, NewDocumentResponse(doc))
	}
	return out
}

type ExtractionResponse struct {
	ID              uuid.UUID       `json:"id"`
	DocumentID      uuid.UUID       `json:"document_id"`
	Status          string          `json:"status"`
	Data            json.RawMessage `json:"data"`
	ExtractionDate  *time.Time      `json:"extraction_date,omitempty"`
	ProcessingError *string         `json:"processing_error,omitempty"`
}

func NewExtractionResponse(ext *models.Extraction) ExtractionResponse {
	return ExtractionResponse{
		ID:              ext.ID,
		DocumentID:      ext.DocumentID,
		Status:          string(ext.Status),
		Data:            json.RawMessage(ext.Data),
		ExtractionDate:  ext.ExtractionDate,
		ProcessingError: ext.ProcessingError,
	}
}

type PostingResponse struct {
	AccountNumber string    `json:"account_number"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PostingDate   time.Time `json:"posting_date"`
	Description   string    `json:"description"`
	VatCode       *string   `json:"vat_code,omitempty"`
	RowNumber     int       `json:"row_number"`
}

type VoucherResponse struct {
	ID           uuid.UUID         `json:"id"`
	Number       string            `json:"number"`
	Date         time.Time         `json:"date"`
	Description  string            `json:"description"`
	ExtractionID *uuid.UUID        `json:"extraction_id,omitempty"`
	Postings     []PostingResponse `json:"postings"`
}

func NewVoucherResponse(voucher *models.Voucher) VoucherResponse {
	resp := VoucherResponse{
		ID:           voucher.ID,
		Number:       voucher.Number,
		Date:         voucher.Date,
		Description:  voucher.Description,
		ExtractionID: voucher.ExtractionID,
		Postings:     make([]PostingResponse, 0, len(voucher.Postings)),
	}
	for _, p := range voucher.Postings {
		resp.Postings = append(resp.Postings, PostingResponse{
			AccountNumber: p.AccountNumber,
			Amount:        p.Amount,
			Currency:      p.Currency,
			PostingDate:   p.PostingDate,
			Description:   p.Description,
			VatCode:       p.VatCode,
			RowNumber:     p.RowNumber,
		})
	}
	return resp
}
