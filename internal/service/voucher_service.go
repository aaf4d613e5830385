package service

import (
	"context"
	"math"
	"time"

	"voucherflow/internal/models"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrUnbalancedVoucher rejects voucher drafts whose postings do not sum
// to zero.
var ErrUnbalancedVoucher = eris.New("voucher postings do not balance to zero")

// balanceEpsilon absorbs float rounding in posting sums.
const balanceEpsilon = 0.005

// VoucherStore is the persistence surface the ledger needs.
type VoucherStore interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Voucher, error)
	NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// VoucherService is the ledger collaborator: it enforces double-entry
// balance and assigns per-tenant voucher numbers.
type VoucherService struct {
	vouchers VoucherStore
	logger   *zap.Logger
}

func NewVoucherService(vouchers VoucherStore, logger *zap.Logger) *VoucherService {
	return &VoucherService{
		vouchers: vouchers,
		logger:   logger,
	}
}

// VoucherDraft is an unpersisted voucher. IDs, number and row order are
// assigned on create.
type VoucherDraft struct {
	TenantID     uuid.UUID
	Date         time.Time
	Description  string
	ExtractionID *uuid.UUID
	Postings     []models.Posting
}

func (s *VoucherService) CreateVoucher(ctx context.Context, draft VoucherDraft) (*models.Voucher, error) {
	if len(draft.Postings) == 0 {
		return nil, eris.New("voucher: at least one posting required")
	}

	var sum float64
	for _, p := range draft.Postings {
		sum += p.Amount
	}
	if math.Abs(sum) > balanceEpsilon {
		return nil, eris.Wrapf(ErrUnbalancedVoucher, "sum=%.4f", sum)
	}

	number, err := s.vouchers.NextNumber(ctx, draft.TenantID)
	if err != nil {
		return nil, eris.Wrap(err, "voucher: next number")
	}

	voucher := &models.Voucher{
		ID:           uuid.New(),
		TenantID:     draft.TenantID,
		Number:       number,
		Date:         draft.Date,
		Description:  draft.Description,
		ExtractionID: draft.ExtractionID,
		CreatedAt:    time.Now().UTC(),
	}
	for i, p := range draft.Postings {
		p.ID = uuid.New()
		p.VoucherID = voucher.ID
		p.RowNumber = i + 1
		if p.PostingDate.IsZero() {
			p.PostingDate = draft.Date
		}
		voucher.Postings = append(voucher.Postings, p)
	}

	if err := s.vouchers.Create(ctx, voucher); err != nil {
		return nil, eris.Wrap(err, "voucher: persist")
	}

	s.logger.Info("Voucher created",
		zap.String("voucher_id", voucher.ID.String()),
		zap.String("tenant_id", voucher.TenantID.String()),
		zap.String("number", voucher.Number),
		zap.Int("postings", len(voucher.Postings)),
	)

	return voucher, nil
}

func (s *VoucherService) FindVoucher(ctx context.Context, tenantID, id uuid.UUID) (*models.Voucher, error) {
	return s.vouchers.GetByID(ctx, tenantID, id)
}
