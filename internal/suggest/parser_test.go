package suggest

import (
	"testing"

	"github.com/jhalloran/tally/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.Suggestion
	}{
		{
			name:  "complete response",
			input: `{"transaction_type":"expense","vendor_name":"Amazon","category":"Office Supplies","description":"Office gear","transfer_to_account":"","confidence":85,"reasoning":"matched known pattern"}`,
			want: model.Suggestion{
				Type:        model.TypeExpense,
				VendorName:  "Amazon",
				Category:    "Office Supplies",
				Description: "Office gear",
				Confidence:  85,
				Reasoning:   "matched known pattern",
			},
		},
		{
			name:  "json wrapped in code fence",
			input: "```json\n{\"transaction_type\":\"transfer\",\"transfer_to_account\":\"Savings\",\"category\":\"Transfer\",\"confidence\":90,\"reasoning\":\"mentions savings\"}\n```",
			want: model.Suggestion{
				Type:              model.TypeTransfer,
				TransferToAccount: "Savings",
				Category:          "Transfer",
				Confidence:        90,
				Reasoning:         "mentions savings",
			},
		},
		{
			name:  "json with surrounding prose",
			input: `Sure! Here is the categorization: {"transaction_type":"sale","category":"Sales","confidence":70,"reasoning":"deposit"} Let me know if you need more.`,
			want: model.Suggestion{
				Type:       model.TypeSale,
				Category:   "Sales",
				Confidence: 70,
				Reasoning:  "deposit",
			},
		},
		{
			name:  "case-insensitive type",
			input: `{"transaction_type":"OWNER_CONTRIBUTION","category":"Equity","confidence":60,"reasoning":"r"}`,
			want: model.Suggestion{
				Type:       model.TypeOwnerContribution,
				Category:   "Equity",
				Confidence: 60,
				Reasoning:  "r",
			},
		},
		{
			name:  "unknown type defaults to expense",
			input: `{"transaction_type":"mystery","category":"Misc","confidence":40,"reasoning":"r"}`,
			want: model.Suggestion{
				Type:       model.TypeExpense,
				Category:   "Misc",
				Confidence: 40,
				Reasoning:  "r",
			},
		},
		{
			name:  "missing fields get defaults",
			input: `{"transaction_type":"expense"}`,
			want: model.Suggestion{
				Type:       model.TypeExpense,
				Category:   model.DefaultCategory,
				Confidence: 50,
				Reasoning:  "No reasoning provided",
			},
		},
		{
			name:  "fractional confidence truncated and clamped",
			input: `{"category":"Misc","confidence":150.7,"reasoning":"r"}`,
			want: model.Suggestion{
				Type:       model.TypeExpense,
				Category:   "Misc",
				Confidence: 100,
				Reasoning:  "r",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSuggestion(tt.input))
		})
	}
}

func TestParseSuggestionMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "whitespace only", input: "   \n\t"},
		{name: "not json", input: "not json"},
		{name: "braces but invalid json", input: "{this is not json}"},
		{name: "only opening brace", input: "{"},
		{name: "closing before opening", input: "} prose {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSuggestion(tt.input)
			assert.Equal(t, model.TypeExpense, got.Type)
			assert.Equal(t, model.DefaultCategory, got.Category)
			assert.Equal(t, 0, got.Confidence)
			assert.NotEmpty(t, got.Reasoning, "reasoning must name the failure")
		})
	}
}

func TestParseSuggestionZeroConfidenceExplicit(t *testing.T) {
	got := ParseSuggestion(`{"category":"Misc","confidence":0,"reasoning":"unsure"}`)
	assert.Equal(t, 0, got.Confidence, "explicit zero must not become the 50 default")
}
