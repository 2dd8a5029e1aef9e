package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewReanalyzeHandler returns a handler for /mx_reanalyze <user_id>, which
// reruns the analysis for one user on demand.
func NewReanalyzeHandler(deps HandlerDeps) bot.HandlerFunc {
	return reanalyzeHandler{deps}.Handle
}

type reanalyzeHandler struct {
	deps HandlerDeps
}

func (h reanalyzeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reanalyze")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Reanalyze handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	userID, err := parseUserIDArg(update.Message.Text)
	if err != nil {
		log.DebugContext(ctx, "Invalid /mx_reanalyze arguments", "error", err)
		sendText(ctx, b, log, chatID, fmt.Sprintf(h.deps.Config.Messages.UserIDUsage, CommandReanalyze))
		return
	}

	log.InfoContext(ctx, "Handling /mx_reanalyze command", "chat_id", chatID, "target_user_id", userID)

	analysisCtx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()
	res, err := h.deps.Pipeline.Analyze(analysisCtx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Reanalysis failed", "target_user_id", userID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	text := h.deps.Config.Messages.ReanalyzeDone + "\n" + formatResult(res)
	sendText(ctx, b, log, chatID, text)
}
