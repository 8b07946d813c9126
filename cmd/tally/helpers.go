package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhalloran/tally/internal/cache"
	"github.com/jhalloran/tally/internal/common"
	"github.com/jhalloran/tally/internal/config"
	"github.com/jhalloran/tally/internal/ledger"
	"github.com/jhalloran/tally/internal/llm"
	"github.com/jhalloran/tally/internal/storage"
	"github.com/spf13/viper"
)

func viperString(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func viperInt(key string, fallback int) int {
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

// createLedgerClient builds the accounting API client from configuration.
func createLedgerClient() (*ledger.Client, error) {
	baseURL := viperString("ledger.base_url", "")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: ledger base URL (set ledger.base_url or TALLY_LEDGER_BASE_URL)", common.ErrMissingConfig)
	}

	token := viperString("ledger.api_token", "")
	if token == "" {
		token = os.Getenv("TALLY_LEDGER_API_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("%w: ledger API token (set ledger.api_token or TALLY_LEDGER_API_TOKEN)", common.ErrMissingConfig)
	}

	return ledger.NewClient(ledger.Config{BaseURL: baseURL, Token: token})
}

// createLLMClient builds the configured LLM provider.
func createLLMClient(ctx context.Context) (llm.Client, error) {
	provider := viperString("llm.provider", "anthropic")

	cfg := llm.Config{
		Provider:  provider,
		Model:     viperString("llm.model", ""),
		RateLimit: viperInt("llm.rate_limit", 0),
	}

	switch provider {
	case "anthropic":
		apiKey := viperString("llm.anthropic_api_key", "")
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("%w: anthropic API key (set llm.anthropic_api_key or ANTHROPIC_API_KEY)", common.ErrMissingConfig)
		}
		cfg.APIKey = apiKey

	case "gemini":
		apiKey := viperString("llm.gemini_api_key", "")
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("%w: gemini API key (set llm.gemini_api_key or GEMINI_API_KEY)", common.ErrMissingConfig)
		}
		cfg.APIKey = apiKey

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, provider)
	}

	return llm.NewClient(ctx, cfg)
}

// openCache loads the session cache from its configured path.
func openCache() (*cache.TransactionCache, error) {
	path := viperString("cache.path", "")
	if path == "" {
		path = config.DefaultCachePath()
	}
	return cache.Load(config.ExpandPath(path))
}

// openStore opens the decision log database and applies migrations.
func openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	path := viperString("database.path", "")
	if path == "" {
		path = config.DefaultDatabasePath()
	}

	store, err := storage.NewSQLiteStore(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open decision database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}
