// Package llm provides language model clients for categorization prompts.
// It supports Anthropic and Gemini providers behind a single CreateMessage
// interface, with token-bucket rate limiting.
package llm
