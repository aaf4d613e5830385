package service

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// InvoiceData is the structured record the model returns for one invoice.
// Optional fields are pointers so "not present" survives a round-trip.
type InvoiceData struct {
	DebitPrediction DebitPrediction `json:"debit_prediction"`
	InvoiceDetails  InvoiceDetails  `json:"invoice_details"`
}

type DebitPrediction struct {
	Account string `json:"account"`
}

type InvoiceDetails struct {
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"`
	DueDate       *string `json:"due_date"`
	KIDNumber     *string `json:"KID_number"`
	AccountNumber *string `json:"account_number"`
	SwiftBIC      *string `json:"swift_bic"`
	CompanyName   string  `json:"company_name"`
	CompanyNumber string  `json:"company_number"`
	OrderTotal    float64 `json:"order_total"`
	Currency      string  `json:"currency"`
	VatPercentage float64 `json:"vat_percentage"`
	VatCode       string  `json:"vat_code"`
	VatAmount     float64 `json:"vat_amount"`
	Description   string  `json:"description"`
	Project       *string `json:"project"`
}

// CleanModelResponse strips the Markdown code fences models like to wrap
// JSON answers in.
func CleanModelResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// ParseInvoiceData decodes a cleaned model response.
func ParseInvoiceData(raw string) (*InvoiceData, error) {
	var data InvoiceData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, eris.Wrap(err, "parse invoice data")
	}
	return &data, nil
}

// legacyEnvelope is the storage format of an earlier schema version, which
// wrapped the payload in a "data" field.
type legacyEnvelope struct {
	Data *InvoiceData `json:"data"`
}

// DecodeStoredInvoiceData decodes extraction payloads across both stored
// schema versions: the current one keeps InvoiceData at the JSON root, the
// legacy one nested it under "data". The legacy probe runs first because a
// root-level decode of a wrapped payload silently yields zero values.
func DecodeStoredInvoiceData(raw []byte) (*InvoiceData, error) {
	var envelope legacyEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var data InvoiceData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, eris.Wrap(err, "decode stored invoice data")
	}
	if data.DebitPrediction.Account == "" && data.InvoiceDetails.InvoiceNumber == "" {
		return nil, eris.New("decode stored invoice data: payload matches no known schema")
	}
	return &data, nil
}
