package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// Command names.
const (
	CommandStart     = "start"
	CommandCancel    = "cancel"
	CommandHelp      = "help"
	CommandReanalyze = "mx_reanalyze"
	CommandUser      = "mx_user"
)

// RegisteredHandler represents a command handler with its middleware.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

func command(pattern string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     pattern,
		Handler:     h,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  mw,
	}
}

// RegisterAllCommands returns every bot command keyed by its slash form.
// Free text is not listed here; it goes to NewMessageHandler as the default
// handler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	adminOnly := AdminOnly(deps)

	return map[string]RegisteredHandler{
		"/" + CommandStart:     command(CommandStart, NewStartHandler(deps)),
		"/" + CommandCancel:    command(CommandCancel, NewCancelHandler(deps)),
		"/" + CommandHelp:      command(CommandHelp, NewHelpHandler(deps)),
		"/" + CommandReanalyze: command(CommandReanalyze, NewReanalyzeHandler(deps), adminOnly),
		"/" + CommandUser:      command(CommandUser, NewUserHandler(deps), adminOnly),
	}
}
