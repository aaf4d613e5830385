package service

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoTextExtracted means the PDF parsed but produced no text, typically
// a scanned image without an OCR layer.
var ErrNoTextExtracted = eris.New("no text could be extracted from the PDF")

// ExtractionService runs the full pipeline for one invoice PDF: text
// extraction, categorization snapshot, model call, parse, validation.
type ExtractionService struct {
	pdf            *PDFService
	llm            *LLMService
	categorization *CategorizationService
	logger         *zap.Logger
}

func NewExtractionService(pdf *PDFService, llm *LLMService, categorization *CategorizationService, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		pdf:            pdf,
		llm:            llm,
		categorization: categorization,
		logger:         logger,
	}
}

// ExtractFromFile processes the PDF at path and returns validated invoice
// data.
func (s *ExtractionService) ExtractFromFile(ctx context.Context, path string) (*InvoiceData, error) {
	text, err := s.pdf.ExtractTextFromFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "extraction: read pdf text")
	}
	if text == "" {
		return nil, ErrNoTextExtracted
	}

	cat, err := s.categorization.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	response, err := s.llm.ExtractInvoice(ctx, text, cat)
	if err != nil {
		return nil, err
	}

	data, err := ParseInvoiceData(CleanModelResponse(response))
	if err != nil {
		return nil, err
	}

	validated := ValidateAndCorrect(data, cat, s.logger)

	s.logger.Info("Invoice data extracted",
		zap.String("invoice_number", validated.InvoiceDetails.InvoiceNumber),
		zap.String("debit_account", validated.DebitPrediction.Account),
		zap.String("vat_code", validated.InvoiceDetails.VatCode),
	)

	return validated, nil
}
