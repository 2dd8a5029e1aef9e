package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewHelpHandler returns a handler for /help. The admin also gets the list of
// admin commands.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	log := h.deps.Logger.With("handler", "help", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	text := h.deps.Config.Messages.Help
	admin := h.deps.Config.Telegram.IsAdmin(msg.From.ID)
	if admin {
		text += "\n\n" + adminHelp()
	}

	log.DebugContext(ctx, "Sending help", "admin", admin)
	sendText(ctx, b, log, msg.Chat.ID, text)
}

func adminHelp() string {
	lines := []string{
		"Admin commands:",
		"/" + CommandReanalyze + " <user_id> - rerun the analysis for a user",
		"/" + CommandUser + " <user_id> - show what is stored about a user",
	}
	return strings.Join(lines, "\n")
}
