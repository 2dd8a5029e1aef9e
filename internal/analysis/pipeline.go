// Package analysis ingests inbound messages and derives the per-user concern
// and risk signals from their history.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/mentalx/mentalxbot/internal/classifier"
	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/database"
	"github.com/mentalx/mentalxbot/internal/logger"
)

// Store is the subset of database.Store the pipeline writes and reads.
type Store interface {
	UpsertChat(ctx context.Context, chat *database.Chat) error
	AppendMessage(ctx context.Context, message *database.Message) error
	IncrementDailyCount(ctx context.Context, userID int64, date string) error
	GetUserMessages(ctx context.Context, userID int64) ([]*database.Message, error)
	UpsertTextAnalysis(ctx context.Context, analysis *database.TextAnalysis) error
	UpsertRiskScore(ctx context.Context, score *database.RiskScore) error
}

// Classifier produces the two signals from a windowed history.
// *classifier.Client satisfies it.
type Classifier interface {
	DetectConcern(ctx context.Context, window string) (classifier.Concern, error)
	ScoreRisk(ctx context.Context, window string) (classifier.Risk, error)
}

const (
	appendAttempts   = 3
	dbWriteTimeout   = 5 * time.Second
	appendRetryDelay = 500 * time.Millisecond
)

// Pipeline runs ingestion and analysis. It is safe for concurrent use.
type Pipeline struct {
	store       Store
	classifier  Classifier
	log         *slog.Logger
	minWords    int
	windowLines int
	location    *time.Location
	retryDelay  time.Duration
	now         func() time.Time
}

// NewPipeline creates a Pipeline. Zero values in cfg fall back to the
// configuration defaults.
func NewPipeline(store Store, cls Classifier, cfg config.AnalysisConfig, log *slog.Logger) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = config.DefaultMinWords
	}
	if cfg.WindowLines <= 0 {
		cfg.WindowLines = config.DefaultWindowLines
	}
	if cfg.Timezone == "" {
		cfg.Timezone = config.DefaultTimezone
	}

	return &Pipeline{
		store:       store,
		classifier:  cls,
		log:         log.With("component", "analysis"),
		minWords:    cfg.MinWords,
		windowLines: cfg.WindowLines,
		location:    cfg.Location(),
		retryDelay:  appendRetryDelay,
		now:         time.Now,
	}
}
