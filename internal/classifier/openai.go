package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/logger"
)

type openaiCompleter struct {
	client      *openai.Client
	log         *slog.Logger
	model       string
	temperature float32
	maxRetries  int
	retryDelay  time.Duration
}

// NewOpenAICompleter creates a chat-completion Completer. BaseURL may point at
// any OpenAI-compatible endpoint.
func NewOpenAICompleter(cfg config.ClassifierConfig, log *slog.Logger) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	l := log.With("component", "openai_completer")
	l.Info("OpenAI completer initialized", "model", cfg.Model)
	return &openaiCompleter{
		client:      openai.NewClientWithConfig(clientCfg),
		log:         l,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
	}, nil
}

func (c *openaiCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	}

	var resp openai.ChatCompletionResponse
	err := retry.Do(
		func() error {
			var err error
			resp, err = c.client.CreateChatCompletion(ctx, req)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryableOpenAIError),
		retry.OnRetry(func(n uint, err error) {
			c.log.WarnContext(ctx, "OpenAI request failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		c.log.ErrorContext(ctx, "OpenAI chat completion failed", "error", err)
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		c.log.WarnContext(ctx, "OpenAI returned empty content", "finish_reason", resp.Choices[0].FinishReason)
	}

	c.log.DebugContext(ctx, "OpenAI completion received",
		"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return text, nil
}

// isRetryableOpenAIError reports rate limiting and server-side failures.
func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	return false
}
