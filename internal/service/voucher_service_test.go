package service

import (
	"context"
	"testing"
	"time"

	"voucherflow/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVoucherStore struct {
	created    *models.Voucher
	nextNumber string
	createErr  error
}

func (f *fakeVoucherStore) Create(ctx context.Context, voucher *models.Voucher) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = voucher
	return nil
}

func (f *fakeVoucherStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Voucher, error) {
	return f.created, nil
}

func (f *fakeVoucherStore) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if f.nextNumber == "" {
		return "1", nil
	}
	return f.nextNumber, nil
}

func balancedDraft(tenantID uuid.UUID) VoucherDraft {
	date := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	return VoucherDraft{
		TenantID:    tenantID,
		Date:        date,
		Description: "Invoice INV-001 from Example AS",
		Postings: []models.Posting{
			{AccountNumber: "6540", Amount: 1250.50, Currency: "NOK"},
			{AccountNumber: "2400", Amount: -1250.50, Currency: "NOK"},
		},
	}
}

func TestCreateVoucher_AssignsNumberAndRows(t *testing.T) {
	store := &fakeVoucherStore{nextNumber: "7"}
	svc := NewVoucherService(store, zap.NewNop())
	tenantID := uuid.New()

	voucher, err := svc.CreateVoucher(context.Background(), balancedDraft(tenantID))
	require.NoError(t, err)

	assert.Equal(t, "7", voucher.Number)
	assert.Equal(t, tenantID, voucher.TenantID)
	require.Len(t, voucher.Postings, 2)
	assert.Equal(t, 1, voucher.Postings[0].RowNumber)
	assert.Equal(t, 2, voucher.Postings[1].RowNumber)
	for _, p := range voucher.Postings {
		assert.Equal(t, voucher.ID, p.VoucherID)
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, voucher.Date, p.PostingDate)
	}
	assert.Same(t, voucher, store.created)
}

func TestCreateVoucher_Unbalanced(t *testing.T) {
	svc := NewVoucherService(&fakeVoucherStore{}, zap.NewNop())

	draft := balancedDraft(uuid.New())
	draft.Postings[1].Amount = -1200.00

	_, err := svc.CreateVoucher(context.Background(), draft)
	assert.ErrorIs(t, err, ErrUnbalancedVoucher)
}

func TestCreateVoucher_RoundingWithinEpsilon(t *testing.T) {
	svc := NewVoucherService(&fakeVoucherStore{}, zap.NewNop())

	draft := balancedDraft(uuid.New())
	draft.Postings[0].Amount = 100.001
	draft.Postings[1].Amount = -100.00

	_, err := svc.CreateVoucher(context.Background(), draft)
	assert.NoError(t, err)
}

func TestCreateVoucher_NoPostings(t *testing.T) {
	svc := NewVoucherService(&fakeVoucherStore{}, zap.NewNop())

	draft := balancedDraft(uuid.New())
	draft.Postings = nil

	_, err := svc.CreateVoucher(context.Background(), draft)
	assert.Error(t, err)
}

func TestCreateVoucher_StoreError(t *testing.T) {
	store := &fakeVoucherStore{createErr: assert.AnError}
	svc := NewVoucherService(store, zap.NewNop())

	_, err := svc.CreateVoucher(context.Background(), balancedDraft(uuid.New()))
	assert.Error(t, err)
}
