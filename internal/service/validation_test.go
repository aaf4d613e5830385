package service

import (
	"testing"

	"voucherflow/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testCategorizationContext() CategorizationContext {
	return CategorizationContext{
		VatCodes: []models.VatCode{
			{Code: "0", Rate: 0},
			{Code: "1", Rate: 25},
			{Code: "13", Rate: 12},
		},
		CostAccounts: []models.Account{
			{Number: "6300", Name: "Rent of Premises"},
			{Number: "6540", Name: "Inventory"},
			{Number: "6790", Name: "Other External Services"},
			{Number: "7100", Name: "Travel Costs"},
		},
	}
}

func TestValidateAndCorrect_ValidDataUntouched(t *testing.T) {
	data := &InvoiceData{
		DebitPrediction: DebitPrediction{Account: "6540"},
		InvoiceDetails: InvoiceDetails{
			VatCode:       "1",
			VatPercentage: 25,
			Description:   "Office supplies",
		},
	}

	got := ValidateAndCorrect(data, testCategorizationContext(), zap.NewNop())
	assert.Equal(t, "6540", got.DebitPrediction.Account)
	assert.Equal(t, "1", got.InvoiceDetails.VatCode)
}

func TestValidateAndCorrect_InvalidVatCode(t *testing.T) {
	cases := []struct {
		name       string
		percentage float64
		want       string
	}{
		{"standard rate", 25, "1"},
		{"low rate", 12, "13"},
		{"no vat", 0, "0"},
		{"unknown rate falls back to standard", 17.5, "1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := &InvoiceData{
				DebitPrediction: DebitPrediction{Account: "6540"},
				InvoiceDetails: InvoiceDetails{
					VatCode:       "99",
					VatPercentage: tc.percentage,
				},
			}
			got := ValidateAndCorrect(data, testCategorizationContext(), zap.NewNop())
			assert.Equal(t, tc.want, got.InvoiceDetails.VatCode)
		})
	}
}

func TestValidateAndCorrect_InvalidAccountUsesKeywords(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Monthly office rent for Q3", "6300"},
		{"Office supplies order", "6540"},
		{"Taxi and travel expenses", "7100"},
		{"Something completely unrelated", "6790"},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			data := &InvoiceData{
				DebitPrediction: DebitPrediction{Account: "9999"},
				InvoiceDetails: InvoiceDetails{
					VatCode:       "1",
					VatPercentage: 25,
					Description:   tc.description,
				},
			}
			got := ValidateAndCorrect(data, testCategorizationContext(), zap.NewNop())
			assert.Equal(t, tc.want, got.DebitPrediction.Account)
		})
	}
}

func TestValidateAndCorrect_NonCostAccountRejected(t *testing.T) {
	// Balance-sheet accounts are never valid debit predictions even if
	// they exist in the chart.
	cat := testCategorizationContext()
	cat.CostAccounts = append(cat.CostAccounts, models.Account{Number: "2400", Name: "Accounts Payable"})

	data := &InvoiceData{
		DebitPrediction: DebitPrediction{Account: "2400"},
		InvoiceDetails: InvoiceDetails{
			VatCode:       "1",
			VatPercentage: 25,
			Description:   "insurance renewal",
		},
	}
	got := ValidateAndCorrect(data, cat, zap.NewNop())
	assert.Equal(t, "7500", got.DebitPrediction.Account)
}

func TestCorrectAccount_AllKeywordGroups(t *testing.T) {
	cases := map[string]string{
		"electricity bill":     "6200",
		"phone subscription":   "6900",
		"marketing campaign":   "7320",
		"insurance premium":    "7500",
		"accounting services":  "6700",
		"warehouse lease":      "6300",
	}
	for description, want := range cases {
		assert.Equal(t, want, correctAccount(description), description)
	}
}

func TestValidateAndCorrect_DoesNotMutateInput(t *testing.T) {
	data := &InvoiceData{
		DebitPrediction: DebitPrediction{Account: "bogus"},
		InvoiceDetails: InvoiceDetails{
			VatCode:       "bogus",
			VatPercentage: 25,
		},
	}

	_ = ValidateAndCorrect(data, testCategorizationContext(), zap.NewNop())
	assert.Equal(t, "bogus", data.DebitPrediction.Account)
	assert.Equal(t, "bogus", data.InvoiceDetails.VatCode)
}
