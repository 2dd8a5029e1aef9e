package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/logger"
	"github.com/mentalx/mentalxbot/internal/sanitize"
)

// Client issues the three request kinds the bot needs and parses the answers.
type Client struct {
	completer        Completer
	log              *slog.Logger
	timeout          time.Duration
	replyInstruction string
}

// NewClient wraps a Completer. A zero timeout disables the per-call deadline.
func NewClient(completer Completer, cfg config.ClassifierConfig, log *slog.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		completer:        completer,
		log:              log.With("component", "classifier"),
		timeout:          cfg.Timeout,
		replyInstruction: cfg.ReplyInstruction,
	}
}

func (c *Client) complete(ctx context.Context, op, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.completer.Complete(ctx, systemPrompt, userPrompt, maxTokens)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.log.WarnContext(ctx, "Classifier call timed out", "op", op, "timeout", c.timeout)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.log.DebugContext(ctx, "Classifier call finished", "op", op, "duration", time.Since(start),
		"answer_preview", logger.Truncate(text, 80))
	return text, nil
}

// DetectConcern asks whether the windowed history shows signs of distress.
// Unexpected answer shapes are not errors; see ParseConcern.
func (c *Client) DetectConcern(ctx context.Context, window string) (Concern, error) {
	raw, err := c.complete(ctx, "concern detection", concernSystemPrompt, concernPromptHeader+window, concernMaxTokens)
	if err != nil {
		return Concern{}, err
	}

	concern := ParseConcern(raw)
	lower := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(lower, "yes:") && !strings.HasPrefix(lower, "no:") {
		c.log.WarnContext(ctx, "Concern answer has no yes/no prefix, keeping raw text", "answer", logger.Truncate(raw, 200))
	}
	return concern, nil
}

// ScoreRisk asks for a risk percent and category. An unparseable answer yields
// FallbackRisk and a nil error.
func (c *Client) ScoreRisk(ctx context.Context, window string) (Risk, error) {
	raw, err := c.complete(ctx, "risk scoring", riskSystemPrompt, riskPromptHeader+window, riskMaxTokens)
	if err != nil {
		return Risk{}, err
	}

	risk, ok := ParseRisk(raw)
	if !ok {
		c.log.WarnContext(ctx, "Risk answer could not be parsed, using fallback", "answer", logger.Truncate(raw, 200))
		return risk, nil
	}
	if !risk.LabelAgrees() {
		c.log.WarnContext(ctx, "Risk label does not match percent band, using band",
			"percent", risk.Percent, "label", risk.Label, "category", risk.Category)
	}
	return risk, nil
}

// Reply produces a short conversational answer to one user message.
func (c *Client) Reply(ctx context.Context, userMessage string) (string, error) {
	raw, err := c.complete(ctx, "reply", c.replyInstruction, userMessage, replyMaxTokens)
	if err != nil {
		return "", err
	}
	text := sanitize.PlainText(raw)
	if text == "" {
		return "", errors.New("reply is empty after sanitizing")
	}
	return text, nil
}
