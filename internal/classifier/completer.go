// Package classifier talks to the external text-completion provider and turns
// its free-form answers into concern and risk signals.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mentalx/mentalxbot/internal/config"
)

// Provider names accepted in classifier.provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Completer sends one system+user prompt pair and returns the raw answer text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// NewCompleter builds the Completer for the configured provider, behind a
// circuit breaker when classifier.breaker_failures is positive.
func NewCompleter(ctx context.Context, cfg config.ClassifierConfig, log *slog.Logger) (Completer, error) {
	var (
		c   Completer
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		c, err = NewOpenAICompleter(cfg, log)
	case ProviderGemini:
		c, err = NewGeminiCompleter(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.BreakerFailures > 0 {
		c = NewBreaker(c, cfg.Provider, cfg.BreakerFailures, cfg.BreakerCooldown, log)
	}
	return c, nil
}
