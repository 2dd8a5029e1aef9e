// Package main is the entrypoint of the mental-health risk bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbot "github.com/go-telegram/bot"

	"github.com/mentalx/mentalxbot/internal/analysis"
	"github.com/mentalx/mentalxbot/internal/bot"
	"github.com/mentalx/mentalxbot/internal/bot/handlers"
	"github.com/mentalx/mentalxbot/internal/bot/tasks"
	"github.com/mentalx/mentalxbot/internal/classifier"
	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/database"
	"github.com/mentalx/mentalxbot/internal/dialogue"
	"github.com/mentalx/mentalxbot/internal/logger"
	"github.com/mentalx/mentalxbot/internal/report"
	"github.com/mentalx/mentalxbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	completer, err := classifier.NewCompleter(ctx, cfg.Classifier, log)
	if err != nil {
		log.Error("Failed to initialize classifier", "provider", cfg.Classifier.Provider, "error", err)
		return 1
	}
	cls := classifier.NewClient(completer, cfg.Classifier, log)
	pipeline := analysis.NewPipeline(store, cls, cfg.Analysis, log)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Dialogue: dialogue.NewManager(cfg.Dialogue, cfg.Messages, store, log),
		Pipeline: pipeline,
		Replier:  cls,
	}
	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Analyzer: pipeline,
		Config:   cfg,
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	telegram.SetCommands(ctx, tg, log)

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, cfg.Analysis.Location(), tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var reportServer bot.Server
	if cfg.Report.Enabled {
		gin.SetMode(gin.ReleaseMode)
		reportServer = report.New(cfg.Report, store, log)
	}

	app := bot.NewBot(log, tg, sched, reportServer)

	log.Info("Starting bot...")
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Bot stopped due to error", "error", err)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
