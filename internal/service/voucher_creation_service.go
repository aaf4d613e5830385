package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voucherflow/internal/models"
	"voucherflow/internal/repository"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// creditAccountPayable is the fixed accounts-payable account every
// auto-created voucher credits.
const creditAccountPayable = "2400"

var (
	ErrExtractionNotFound     = eris.New("extraction not found")
	ErrExtractionNotCompleted = eris.New("extraction is not in COMPLETED status")
)

// ExtractionStore reads and advances persisted extractions.
type ExtractionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Extraction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExtractionStatus) error
}

// DocumentOwnerResolver resolves which tenant a document belongs to.
type DocumentOwnerResolver interface {
	GetOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// VoucherCreator is the slice of the ledger this builder needs.
type VoucherCreator interface {
	CreateVoucher(ctx context.Context, draft VoucherDraft) (*models.Voucher, error)
}

// VoucherCreationService turns a completed extraction into a balanced
// two-posting voucher: a debit on the predicted cost account and a credit
// on accounts payable.
type VoucherCreationService struct {
	extractions ExtractionStore
	documents   DocumentOwnerResolver
	ledger      VoucherCreator
	logger      *zap.Logger
}

func NewVoucherCreationService(extractions ExtractionStore, documents DocumentOwnerResolver, ledger VoucherCreator, logger *zap.Logger) *VoucherCreationService {
	return &VoucherCreationService{
		extractions: extractions,
		documents:   documents,
		ledger:      ledger,
		logger:      logger,
	}
}

// CreateFromExtraction builds and persists the voucher for extractionID.
// tenantID must match the owning tenant of the extraction's document;
// a mismatch reports not-found so tenants cannot probe each other's ids.
func (s *VoucherCreationService) CreateFromExtraction(ctx context.Context, tenantID, extractionID uuid.UUID) (*models.Voucher, error) {
	ext, err := s.extractions.GetByID(ctx, extractionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExtractionNotFound
		}
		return nil, eris.Wrap(err, "voucher creation: load extraction")
	}

	if ext.Status != models.ExtractionStatusCompleted {
		return nil, eris.Wrapf(ErrExtractionNotCompleted, "status=%s", ext.Status)
	}

	owner, err := s.documents.GetOwner(ctx, ext.DocumentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExtractionNotFound
		}
		return nil, eris.Wrap(err, "voucher creation: resolve owner")
	}
	if owner != tenantID {
		return nil, ErrExtractionNotFound
	}

	data, err := DecodeStoredInvoiceData(ext.Data)
	if err != nil {
		return nil, err
	}

	details := data.InvoiceDetails
	voucherDate := parseInvoiceDate(details.InvoiceDate, s.logger)
	description := fmt.Sprintf("Invoice %s from %s", details.InvoiceNumber, details.CompanyName)
	vatCode := details.VatCode

	extID := ext.ID
	draft := VoucherDraft{
		TenantID:     tenantID,
		Date:         voucherDate,
		Description:  description,
		ExtractionID: &extID,
		Postings: []models.Posting{
			{
				AccountNumber: data.DebitPrediction.Account,
				Amount:        details.OrderTotal,
				Currency:      details.Currency,
				PostingDate:   voucherDate,
				Description:   description,
				VatCode:       &vatCode,
			},
			{
				AccountNumber: creditAccountPayable,
				Amount:        -details.OrderTotal,
				Currency:      details.Currency,
				PostingDate:   voucherDate,
				Description:   description,
			},
		},
	}

	voucher, err := s.ledger.CreateVoucher(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := s.extractions.UpdateStatus(ctx, ext.ID, models.ExtractionStatusConvertedToVoucher); err != nil {
		return nil, eris.Wrap(err, "voucher creation: advance extraction status")
	}

	s.logger.Info("Voucher created from extraction",
		zap.String("extraction_id", ext.ID.String()),
		zap.String("voucher_id", voucher.ID.String()),
		zap.String("debit_account", data.DebitPrediction.Account),
		zap.Float64("amount", details.OrderTotal),
	)

	return voucher, nil
}

// parseInvoiceDate expects YYYY-MM-DD from validated data. A bad date is
// logged and replaced with today rather than blocking the voucher.
func parseInvoiceDate(value string, logger *zap.Logger) time.Time {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		logger.Warn("Invalid invoice date, using current date",
			zap.String("invoice_date", value),
		)
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	return date
}
