package service

import (
	"context"
	"testing"

	"voucherflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLedger struct {
	vatCodes []models.VatCode
	accounts []models.Account
	err      error
}

func (s *stubLedger) ListVatCodes(ctx context.Context) ([]models.VatCode, error) {
	return s.vatCodes, s.err
}

func (s *stubLedger) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.accounts, s.err
}

func TestSnapshot_FiltersCostAccounts(t *testing.T) {
	ledger := &stubLedger{
		vatCodes: []models.VatCode{{Code: "1", Rate: 25}},
		accounts: []models.Account{
			{Number: "2400", Name: "Accounts Payable"},
			{Number: "7100", Name: "Travel Costs"},
			{Number: "1920", Name: "Bank"},
			{Number: "4300", Name: "Purchase of Goods"},
			{Number: "6540", Name: "Inventory"},
		},
	}

	svc := NewCategorizationService(ledger, zap.NewNop())
	cat, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	var numbers []string
	for _, acc := range cat.CostAccounts {
		numbers = append(numbers, acc.Number)
	}
	assert.Equal(t, []string{"4300", "6540", "7100"}, numbers)

	assert.True(t, cat.HasCostAccount("6540"))
	assert.False(t, cat.HasCostAccount("2400"))
	assert.True(t, cat.VatCodeExists("1"))
	assert.False(t, cat.VatCodeExists("99"))
}

func TestSnapshot_LedgerError(t *testing.T) {
	ledger := &stubLedger{err: assert.AnError}
	svc := NewCategorizationService(ledger, zap.NewNop())

	_, err := svc.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestPromptSection(t *testing.T) {
	cat := CategorizationContext{
		VatCodes: []models.VatCode{
			{Code: "1", Description: "Input VAT deductible, high rate", Rate: 25, VatType: "INPUT"},
		},
		CostAccounts: []models.Account{
			{Number: "6540", Name: "Inventory", Description: "Inventar"},
		},
	}

	section := cat.PromptSection()
	assert.Contains(t, section, "AVAILABLE CATEGORIZATION RULES")
	assert.Contains(t, section, "Code: 1, Description: Input VAT deductible, high rate, Rate: 25%, Type: INPUT")
	assert.Contains(t, section, "- 6540: Inventory (Inventar)")
	assert.Contains(t, section, `VAT rate 25% typically uses code "1"`)
}
