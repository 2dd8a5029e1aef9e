package handlers

import (
	"context"
	"log/slog"

	"github.com/mentalx/mentalxbot/internal/analysis"
	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/database"
	"github.com/mentalx/mentalxbot/internal/dialogue"
)

// Replier produces the conversational answer to a user message.
// *classifier.Client satisfies it.
type Replier interface {
	Reply(ctx context.Context, userMessage string) (string, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Dialogue *dialogue.Manager
	Pipeline *analysis.Pipeline
	Replier  Replier
}
