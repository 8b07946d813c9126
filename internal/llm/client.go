package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers: one system prompt, one
// user prompt, one text reply. Transport failures are returned unchanged in
// meaning; callers own retry policy.
type Client interface {
	CreateMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds configuration for LLM clients.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	RateLimit   int // requests per minute, 0 for default
}
