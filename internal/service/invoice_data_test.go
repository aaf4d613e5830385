package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoiceJSON = `{
	"debit_prediction": {"account": "6540"},
	"invoice_details": {
		"invoice_number": "INV-001",
		"invoice_date": "2025-07-15",
		"due_date": null,
		"KID_number": "12345",
		"account_number": null,
		"swift_bic": null,
		"company_name": "Example AS",
		"company_number": "981234567",
		"order_total": 1250.50,
		"currency": "NOK",
		"vat_percentage": 25.0,
		"vat_code": "1",
		"vat_amount": 250.10,
		"description": "Office supplies",
		"project": null
	}
}`

func TestCleanModelResponse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n\n", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanModelResponse(tc.input))
		})
	}
}

func TestParseInvoiceData(t *testing.T) {
	data, err := ParseInvoiceData(sampleInvoiceJSON)
	require.NoError(t, err)

	assert.Equal(t, "6540", data.DebitPrediction.Account)
	assert.Equal(t, "INV-001", data.InvoiceDetails.InvoiceNumber)
	assert.Equal(t, 1250.50, data.InvoiceDetails.OrderTotal)
	assert.Nil(t, data.InvoiceDetails.DueDate)
	require.NotNil(t, data.InvoiceDetails.KIDNumber)
	assert.Equal(t, "12345", *data.InvoiceDetails.KIDNumber)
}

func TestParseInvoiceData_Invalid(t *testing.T) {
	_, err := ParseInvoiceData("not json at all")
	assert.Error(t, err)
}

func TestDecodeStoredInvoiceData_CurrentFormat(t *testing.T) {
	data, err := DecodeStoredInvoiceData([]byte(sampleInvoiceJSON))
	require.NoError(t, err)
	assert.Equal(t, "6540", data.DebitPrediction.Account)
}

func TestDecodeStoredInvoiceData_LegacyWrapper(t *testing.T) {
	wrapped := `{"data": ` + sampleInvoiceJSON + `}`

	data, err := DecodeStoredInvoiceData([]byte(wrapped))
	require.NoError(t, err)
	assert.Equal(t, "6540", data.DebitPrediction.Account)
	assert.Equal(t, "INV-001", data.InvoiceDetails.InvoiceNumber)
}

func TestDecodeStoredInvoiceData_UnknownShape(t *testing.T) {
	_, err := DecodeStoredInvoiceData([]byte(`{"something":"else"}`))
	assert.Error(t, err)
}

func TestDecodeStoredInvoiceData_Malformed(t *testing.T) {
	_, err := DecodeStoredInvoiceData([]byte(`{broken`))
	assert.Error(t, err)
}
