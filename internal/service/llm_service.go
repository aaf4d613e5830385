package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"voucherflow/pkg/config"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// extractionTemperature is fixed low so repeated runs over the same
// invoice stay deterministic.
const extractionTemperature = 0.1

// ErrAPIKeyMissing means no OpenAI key is configured. Extraction degrades
// to a failed result instead of refusing to start.
var ErrAPIKeyMissing = eris.New("OpenAI API key is not configured")

// LLMService calls the OpenAI chat completions API to turn invoice text
// into the structured JSON schema. One attempt per invoice, no retries.
type LLMService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLLMService(cfg *config.OpenAIConfig, logger *zap.Logger) *LLMService {
	return &LLMService{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: chatCompletionsURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ExtractInvoice sends the invoice text plus categorization rules to the
// model and returns the raw completion text.
func (s *LLMService) ExtractInvoice(ctx context.Context, text string, cat CategorizationContext) (string, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return "", ErrAPIKeyMissing
	}

	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a specialized invoice extraction assistant for Norwegian accounting. Always use the provided categorization rules exactly.",
			},
			{
				Role:    "user",
				Content: buildExtractionPrompt(text, cat),
			},
		},
		Temperature: extractionTemperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", eris.Wrap(err, "llm: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", eris.Wrap(err, "llm: create request")
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "llm: chat completions call")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "llm: read response")
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", eris.Wrapf(err, "llm: parse response (status %d)", resp.StatusCode)
	}
	if parsed.Error != nil {
		return "", eris.Errorf("llm: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("llm: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", eris.New("llm: response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", eris.New("llm: response empty content")
	}

	s.logger.Info("Invoice extraction completed",
		zap.String("model", s.model),
		zap.Int("response_length", len(content)),
	)

	return content, nil
}

func buildExtractionPrompt(text string, cat CategorizationContext) string {
	return fmt.Sprintf(`You are an invoice extraction assistant specialized in Norwegian accounting standards.

%s

Extract the following details from this invoice text and return a JSON response in this exact format:

{
  "debit_prediction": {
    "account": "6540"
  },
  "invoice_details": {
    "invoice_number": "INV-2025-0092",
    "invoice_date": "2025-07-15",
    "due_date": "2025-08-15",
    "KID_number": "1234567890123456789012345",
    "account_number": "98765432101",
    "swift_bic": "DNBANOKKXXX",
    "company_name": "Example Supplies AS",
    "company_number": "981234567",
    "order_total": 12500.50,
    "currency": "NOK",
    "vat_percentage": 25.0,
    "vat_code": "1",
    "vat_amount": 2500.10,
    "description": "Office chairs and desks, July 2025",
    "project": "Office Upgrade Q3"
  }
}

CRITICAL INSTRUCTIONS:
1. For vat_code: MUST use one of the exact codes from the VAT codes list above
2. For debit_prediction.account: MUST use one of the exact account numbers from the cost accounts list above
3. For Norwegian invoices: VAT rate 25%% = code "1", 12%% = code "13", 0%% = code "0"
4. For cost accounts: Choose the most appropriate account based on the invoice description
5. If unsure about account, prefer general accounts like 6540 (Inventory) or 6790 (Other External Services)
6. For optional fields, use null if not found:
   - due_date: Use null if no due date is specified
   - KID_number: Use null if not found (common for international invoices)
   - account_number: Use null if no bank account number is provided
   - swift_bic: Use null if no SWIFT/BIC code is provided
   - project: Use null if no specific project is mentioned
7. For dates: Use YYYY-MM-DD format
8. For amounts: Use decimal numbers (e.g., 12500.50, not 12500,50)
9. For company_number: Use only the numeric part (e.g., "981234567" not "NO 981 234 567 MVA")

Here is the invoice text:
"""
%s
"""`, cat.PromptSection(), text)
}
