package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mentalx/mentalxbot/internal/dialogue"
)

const (
	sendMessageTimeout = 10 * time.Second
	dbReadTimeout      = 5 * time.Second
	analysisTimeout    = 3 * time.Minute
)

// sendText sends plain text to chatID and logs a failure.
func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	send(ctx, b, log, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

func send(ctx context.Context, b *bot.Bot, log *slog.Logger, params *bot.SendMessageParams) {
	if ctx.Err() != nil {
		log.WarnContext(ctx, "Context cancelled before sending message", "error", ctx.Err())
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	if _, err := b.SendMessage(sendCtx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", params.ChatID)
	}
}

// sendStep sends a dialogue step with its keyboard (or keyboard removal).
func sendStep(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, step dialogue.Step) {
	if step.Text == "" {
		return
	}
	send(ctx, b, log, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        step.Text,
		ReplyMarkup: replyMarkup(step),
	})
}

func replyMarkup(step dialogue.Step) models.ReplyMarkup {
	if step.RemoveKeyboard {
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	if len(step.Keyboard) == 0 {
		return nil
	}

	rows := make([][]models.KeyboardButton, 0, len(step.Keyboard))
	for _, labels := range step.Keyboard {
		row := make([]models.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, models.KeyboardButton{Text: label})
		}
		rows = append(rows, row)
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// parseUserIDArg reads the numeric user id following a command.
func parseUserIDArg(text string) (int64, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, fmt.Errorf("expected exactly one argument, got %d", len(fields)-1)
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", fields[1])
	}
	return id, nil
}
