package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mentalx/mentalxbot/internal/analysis"
)

// NewMessageHandler returns the default handler for free text. Answers of an
// active dialogue go to the dialogue; anything else is ingested, analyzed and
// answered conversationally.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	text := msg.Text
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "/") {
		log.DebugContext(ctx, "Ignoring non-text message or unknown command", "chat_id", msg.Chat.ID)
		return
	}

	chatID, userID := msg.Chat.ID, msg.From.ID
	log = log.With("chat_id", chatID, "user_id", userID)

	if h.deps.Dialogue.Active(userID) {
		step, err := h.deps.Dialogue.Handle(ctx, userID, text)
		if err != nil {
			log.ErrorContext(ctx, "Dialogue step failed", "state", step.State, "error", err)
		}
		sendStep(ctx, b, log, chatID, step)
		return
	}

	if h.deps.Config.Dialogue.RequireAuthorization && !h.authorized(ctx, log, userID) {
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.AuthorizationNeed)
		return
	}

	if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping}); err != nil {
		log.DebugContext(ctx, "Failed to send typing action", "error", err)
	}

	in := analysis.Inbound{
		ChatID:     chatID,
		ChatTitle:  chatTitle(msg.Chat),
		UserID:     userID,
		Content:    text,
		ReceivedAt: time.Unix(int64(msg.Date), 0),
	}
	if err := h.deps.Pipeline.Ingest(ctx, in); err != nil {
		log.ErrorContext(ctx, "Failed to ingest message", "error", err)
	} else {
		h.analyze(ctx, log, userID)
	}

	reply, err := h.deps.Replier.Reply(ctx, text)
	if err != nil {
		log.ErrorContext(ctx, "Failed to generate reply", "error", err)
		reply = h.deps.Config.Messages.GeneralError
	}
	send(ctx, b, log, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            reply,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
}

func (h messageHandler) analyze(ctx context.Context, log *slog.Logger, userID int64) {
	analysisCtx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	res, err := h.deps.Pipeline.Analyze(analysisCtx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Analysis failed", "error", err)
		return
	}
	if res.Risk != nil {
		log.InfoContext(ctx, "User risk updated", "percent", res.Risk.Percent, "category", res.Risk.Category, "sufficient", res.Sufficient)
	}
}

func (h messageHandler) authorized(ctx context.Context, log *slog.Logger, userID int64) bool {
	dbCtx, cancel := context.WithTimeout(ctx, dbReadTimeout)
	defer cancel()

	auth, err := h.deps.Store.GetAuthorization(dbCtx, userID)
	if err != nil {
		// Store errors fail open.
		log.WarnContext(ctx, "Could not check authorization, letting message through", "error", err)
		return !errors.Is(err, context.Canceled)
	}
	return auth != nil
}

func chatTitle(chat models.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	if name == "" && chat.Username != "" {
		name = "@" + chat.Username
	}
	return name
}
