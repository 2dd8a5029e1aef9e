// Package tasks implements the bot's scheduled tasks and their registry.
package tasks

import (
	"context"
	"log/slog"

	"github.com/mentalx/mentalxbot/internal/analysis"
	"github.com/mentalx/mentalxbot/internal/config"
)

// Maintainer runs database housekeeping.
type Maintainer interface {
	RunSQLMaintenance(ctx context.Context) error
}

// UserLister lists the users that have message history.
type UserLister interface {
	GetMessageUserIDs(ctx context.Context) ([]int64, error)
}

// Analyzer reruns the analysis for one user. *analysis.Pipeline satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, userID int64) (analysis.Result, error)
}

// Store is what the tasks need from database.Store.
type Store interface {
	Maintainer
	UserLister
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    Store
	Analyzer Analyzer
	Config   *config.Config
}
