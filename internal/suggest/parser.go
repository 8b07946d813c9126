package suggest

import (
	"encoding/json"
	"strings"

	"github.com/jhalloran/tally/internal/model"
)

// rawSuggestion is the fixed JSON schema the model is instructed to emit.
type rawSuggestion struct {
	TransactionType   string   `json:"transaction_type"`
	VendorName        string   `json:"vendor_name"`
	Category          string   `json:"category"`
	Description       string   `json:"description"`
	TransferToAccount string   `json:"transfer_to_account"`
	Confidence        *float64 `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
}

// ParseSuggestion turns untrusted LLM text into a Suggestion. It never
// fails: malformed input degrades to a zero-confidence "Uncategorized"
// expense whose reasoning names the problem, so the reviewer always has
// something to act on.
func ParseSuggestion(text string) model.Suggestion {
	if strings.TrimSpace(text) == "" {
		return fallbackSuggestion("Failed to get response")
	}

	// The model may wrap the JSON in prose or a code fence; take the
	// outermost brace pair.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return fallbackSuggestion("No JSON object in response")
	}

	var raw rawSuggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return fallbackSuggestion("Invalid JSON in response: " + err.Error())
	}

	s := model.Suggestion{
		Type:              model.ParseTransactionType(raw.TransactionType),
		VendorName:        strings.TrimSpace(raw.VendorName),
		Category:          strings.TrimSpace(raw.Category),
		Description:       strings.TrimSpace(raw.Description),
		TransferToAccount: strings.TrimSpace(raw.TransferToAccount),
		Reasoning:         strings.TrimSpace(raw.Reasoning),
		Confidence:        50,
	}

	if s.Category == "" {
		s.Category = model.DefaultCategory
	}
	if s.Reasoning == "" {
		s.Reasoning = "No reasoning provided"
	}
	if raw.Confidence != nil {
		s.Confidence = clampConfidence(int(*raw.Confidence))
	}

	return s
}

func fallbackSuggestion(reason string) model.Suggestion {
	return model.Suggestion{
		Type:       model.TypeExpense,
		Category:   model.DefaultCategory,
		Confidence: 0,
		Reasoning:  reason,
	}
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
