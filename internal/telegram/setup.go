// Package telegram builds the go-telegram/bot instance and registers the
// command handlers on it.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mentalx/mentalxbot/internal/bot/handlers"
)

// NewTelegramBot creates a bot for token with the given options.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created")
	return b, nil
}

// applyMiddleware wraps handler so that mw[0] is the outermost middleware.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers every handler with its own middleware chain, in
// a stable order.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registered map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return errors.New("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registered) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	keys := make([]string, 0, len(registered))
	for key := range registered {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		h := registered[key]
		if h.Handler == nil {
			log.Warn("Skipping registration for nil handler", "pattern", h.Pattern)
			continue
		}
		b.RegisterHandler(h.HandlerType, h.Pattern, h.MatchType, applyMiddleware(h.Handler, h.Middleware))
		log.Debug("Registered handler", "pattern", h.Pattern, "match_type", h.MatchType, "middleware_count", len(h.Middleware))
	}

	log.Info("Registered Telegram handlers", "count", len(keys))
	return nil
}

// PublicCommands is the command menu shown to every user.
var PublicCommands = []models.BotCommand{
	{Command: handlers.CommandStart, Description: "Answer the short questionnaire"},
	{Command: handlers.CommandCancel, Description: "Cancel the questionnaire"},
	{Command: handlers.CommandHelp, Description: "Show help"},
}

// SetCommands publishes the command menu. A failure only affects the menu.
func SetCommands(ctx context.Context, b *bot.Bot, logger *slog.Logger) {
	ok, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: PublicCommands})
	if err != nil || !ok {
		logger.Warn("Failed to set bot command menu", "error", err)
	}
}
