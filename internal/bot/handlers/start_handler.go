package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for /start. It begins the authorization
// dialogue, discarding any unfinished one, and shows the age keyboard.
// Completed users may run it again; their answers are replaced on completion.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	chatID, userID := msg.Chat.ID, msg.From.ID
	log := h.deps.Logger.With("handler", "start", "chat_id", chatID, "user_id", userID)

	restarted := h.deps.Dialogue.Active(userID)
	step := h.deps.Dialogue.Start(userID)
	log.InfoContext(ctx, "Authorization dialogue started", "restarted", restarted, "state", step.State)

	sendStep(ctx, b, log, chatID, step)
}
