package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mentalx/mentalxbot/internal/analysis"
	"github.com/mentalx/mentalxbot/internal/database"
)

const recentDays = 7

// NewUserHandler returns a handler for /mx_user <user_id>, which shows what is
// stored about one user.
func NewUserHandler(deps HandlerDeps) bot.HandlerFunc {
	return userHandler{deps}.Handle
}

type userHandler struct {
	deps HandlerDeps
}

func (h userHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "user")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "User handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	userID, err := parseUserIDArg(update.Message.Text)
	if err != nil {
		sendText(ctx, b, log, chatID, fmt.Sprintf(h.deps.Config.Messages.UserIDUsage, CommandUser))
		return
	}

	log.InfoContext(ctx, "Handling /mx_user command", "chat_id", chatID, "target_user_id", userID)

	text, err := h.describe(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load user data", "target_user_id", userID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	sendText(ctx, b, log, chatID, text)
}

func (h userHandler) describe(ctx context.Context, userID int64) (string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbReadTimeout)
	defer cancel()

	auth, err := h.deps.Store.GetAuthorization(dbCtx, userID)
	if err != nil {
		return "", err
	}
	textAnalysis, err := h.deps.Store.GetTextAnalysis(dbCtx, userID)
	if err != nil {
		return "", err
	}
	risk, err := h.deps.Store.GetRiskScore(dbCtx, userID)
	if err != nil {
		return "", err
	}
	counts, err := h.deps.Store.GetDailyCounts(dbCtx, userID)
	if err != nil {
		return "", err
	}

	return formatUser(userID, auth, textAnalysis, risk, counts), nil
}

func formatUser(userID int64, auth *database.Authorization, ta *database.TextAnalysis, risk *database.RiskScore, counts []*database.DailyCount) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User %d\n", userID)

	if auth != nil {
		fmt.Fprintf(&sb, "Age: %s | Gender: %s | Country: %s\n", auth.AgeRange, auth.Gender, auth.Country)
	} else {
		sb.WriteString("Not authorized\n")
	}

	if ta != nil {
		fmt.Fprintf(&sb, "Analysis (%s): %s\n", ta.UpdatedAt.UTC().Format(time.DateTime), ta.ResultText)
	} else {
		sb.WriteString("Analysis: No analysis available.\n")
	}

	if risk != nil {
		fmt.Fprintf(&sb, "Risk: %.1f%% (%s)\n", risk.Percent, risk.Category)
	} else {
		sb.WriteString("Risk: none\n")
	}

	if len(counts) > 0 {
		sb.WriteString("Messages per day:\n")
		start := max(0, len(counts)-recentDays)
		for _, c := range counts[start:] {
			fmt.Fprintf(&sb, "  %s: %d\n", c.Date, c.Count)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatResult(res analysis.Result) string {
	var parts []string
	if !res.Sufficient {
		parts = append(parts, fmt.Sprintf("Only %d words, not enough for analysis.", res.Words))
	}
	if res.Concern != nil {
		parts = append(parts, res.Concern.Text())
	} else {
		parts = append(parts, "Concern detection failed; previous result kept.")
	}
	if res.Risk != nil {
		parts = append(parts, fmt.Sprintf("Risk: %.1f%% (%s)", res.Risk.Percent, res.Risk.Category))
	} else {
		parts = append(parts, "Risk scoring failed; previous score kept.")
	}
	return strings.Join(parts, "\n")
}
