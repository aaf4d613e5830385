package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"voucherflow/internal/models"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LedgerSource supplies the reference data the extraction pipeline
// constrains the model with.
type LedgerSource interface {
	ListVatCodes(ctx context.Context) ([]models.VatCode, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
}

// CategorizationContext is a point-in-time snapshot of the valid VAT codes
// and cost accounts. It is passed by value through the pipeline so the
// validator stays pure and testable.
type CategorizationContext struct {
	VatCodes     []models.VatCode
	CostAccounts []models.Account
}

func (c CategorizationContext) VatCodeExists(code string) bool {
	for _, vc := range c.VatCodes {
		if vc.Code == code {
			return true
		}
	}
	return false
}

func (c CategorizationContext) HasCostAccount(number string) bool {
	for _, acc := range c.CostAccounts {
		if acc.Number == number {
			return true
		}
	}
	return false
}

// PromptSection renders the snapshot as the rules block embedded in the
// extraction prompt.
func (c CategorizationContext) PromptSection() string {
	var b strings.Builder

	b.WriteString("AVAILABLE CATEGORIZATION RULES:\n\n")
	b.WriteString("VAT CODES (for vat_code field):\n")
	for _, vc := range c.VatCodes {
		fmt.Fprintf(&b, "- Code: %s, Description: %s, Rate: %g%%, Type: %s\n", vc.Code, vc.Description, vc.Rate, vc.VatType)
	}
	b.WriteString("\nCOST ACCOUNTS (for debit_prediction.account field):\n")
	for _, acc := range c.CostAccounts {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", acc.Number, acc.Name, acc.Description)
	}
	b.WriteString(`
IMPORTANT RULES:
1. For vat_code: Use only the exact codes from the VAT codes list above
2. For debit_prediction.account: Use only account numbers from the cost accounts list above (4XXX, 6XXX, 7XXX series)
3. If no exact match is found, use the most appropriate code/account based on the invoice content
4. For Norwegian invoices, VAT rate 25% typically uses code "1", 12% uses code "13", 0% uses code "0"`)

	return b.String()
}

// CategorizationService builds fresh snapshots from the ledger.
type CategorizationService struct {
	ledger LedgerSource
	logger *zap.Logger
}

func NewCategorizationService(ledger LedgerSource, logger *zap.Logger) *CategorizationService {
	return &CategorizationService{
		ledger: ledger,
		logger: logger,
	}
}

// Snapshot loads the current VAT codes and the cost accounts, the latter
// filtered to the 4XXX (cost of goods) and 6XXX-7XXX (operating expense)
// series.
func (s *CategorizationService) Snapshot(ctx context.Context) (CategorizationContext, error) {
	vatCodes, err := s.ledger.ListVatCodes(ctx)
	if err != nil {
		return CategorizationContext{}, eris.Wrap(err, "categorization: list vat codes")
	}

	accounts, err := s.ledger.ListAccounts(ctx)
	if err != nil {
		return CategorizationContext{}, eris.Wrap(err, "categorization: list accounts")
	}

	var costAccounts []models.Account
	for _, acc := range accounts {
		if isCostAccount(acc.Number) {
			costAccounts = append(costAccounts, acc)
		}
	}
	sort.Slice(costAccounts, func(i, j int) bool {
		return costAccounts[i].Number < costAccounts[j].Number
	})

	return CategorizationContext{
		VatCodes:     vatCodes,
		CostAccounts: costAccounts,
	}, nil
}

func isCostAccount(number string) bool {
	return strings.HasPrefix(number, "4") ||
		strings.HasPrefix(number, "6") ||
		strings.HasPrefix(number, "7")
}
