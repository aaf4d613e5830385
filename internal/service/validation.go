package service

import (
	"strings"

	"go.uber.org/zap"
)

// ValidateAndCorrect checks the model's categorization fields against the
// snapshot and deterministically replaces invalid ones. Model output is
// untrusted; it must never break referential integrity with the chart of
// accounts or the VAT table. Corrections are logged for audit, they are
// not errors.
func ValidateAndCorrect(data *InvoiceData, cat CategorizationContext, logger *zap.Logger) *InvoiceData {
	corrected := *data

	if !cat.VatCodeExists(data.InvoiceDetails.VatCode) {
		vatCode := correctVatCode(data.InvoiceDetails.VatPercentage)
		logger.Warn("Corrected invalid VAT code",
			zap.String("from", data.InvoiceDetails.VatCode),
			zap.String("to", vatCode),
			zap.Float64("vat_percentage", data.InvoiceDetails.VatPercentage),
		)
		corrected.InvoiceDetails.VatCode = vatCode
	}

	account := data.DebitPrediction.Account
	if !cat.HasCostAccount(account) || !isCostAccount(account) {
		replacement := correctAccount(data.InvoiceDetails.Description)
		logger.Warn("Corrected invalid debit account",
			zap.String("from", account),
			zap.String("to", replacement),
		)
		corrected.DebitPrediction.Account = replacement
	}

	return &corrected
}

// correctVatCode recomputes the VAT code from the percentage using the
// Norwegian standard rates.
func correctVatCode(vatPercentage float64) string {
	switch vatPercentage {
	case 25.0:
		return "1" // standard rate
	case 12.0:
		return "13" // low rate
	case 0.0:
		return "0" // no VAT
	default:
		return "1"
	}
}

var accountKeywords = []struct {
	keywords []string
	account  string
}{
	{[]string{"office", "supplies"}, "6540"},     // inventory
	{[]string{"rent", "lease"}, "6300"},          // rent of premises
	{[]string{"electricity", "power"}, "6200"},   // electricity
	{[]string{"telephone", "phone"}, "6900"},     // telephone
	{[]string{"travel", "transport"}, "7100"},    // travel costs
	{[]string{"advertising", "marketing"}, "7320"}, // advertising costs
	{[]string{"insurance"}, "7500"},              // insurance premiums
	{[]string{"audit", "accounting"}, "6700"},    // audit and accounting fees
}

// defaultCostAccount is Other External Services, the catch-all when no
// keyword matches.
const defaultCostAccount = "6790"

// correctAccount picks a cost account from keywords in the free-text
// description.
func correctAccount(description string) string {
	lower := strings.ToLower(description)
	for _, rule := range accountKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.account
			}
		}
	}
	return defaultCostAccount
}
