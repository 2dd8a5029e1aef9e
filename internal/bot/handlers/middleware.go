// Package handlers contains the Telegram command and message handlers, their
// registry and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly runs next only when the sender is telegram.admin_user_id. Other
// senders get the unauthorized text. Updates without a sender are dropped.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	log := deps.Logger.With("middleware", "admin_only")

	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			msg := update.Message
			if msg == nil || msg.From == nil {
				return
			}
			if deps.Config.Telegram.IsAdmin(msg.From.ID) {
				next(ctx, b, update)
				return
			}

			log.WarnContext(ctx, "Admin command refused", "user_id", msg.From.ID, "chat_id", msg.Chat.ID, "text", msg.Text)
			sendText(ctx, b, log, msg.Chat.ID, deps.Config.Messages.Unauthorized)
		}
	}
}
