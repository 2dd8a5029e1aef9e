package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/mentalx/mentalxbot/internal/classifier"
	"github.com/mentalx/mentalxbot/internal/database"
)

// InsufficientDataReason is the concern reason stored when a history is too
// short to classify.
const InsufficientDataReason = "Not enough data for analysis."

// Result is the outcome of one analysis run. Concern or Risk is nil when the
// classifier call for it failed and nothing was committed for that signal.
type Result struct {
	UserID     int64
	Words      int
	Sufficient bool
	Concern    *classifier.Concern
	Risk       *classifier.Risk
}

// Analyze recomputes the concern and risk signals for userID from its full
// history and commits whatever it produced. Only a failure to read the
// history is returned; classifier and write failures are logged.
func (p *Pipeline) Analyze(ctx context.Context, userID int64) (Result, error) {
	result := Result{UserID: userID}
	log := p.log.With("user_id", userID)

	messages, err := p.store.GetUserMessages(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("read history for user %d: %w", userID, err)
	}

	result.Words = WordCount(messages)
	if result.Words < p.minWords {
		concern := classifier.Concern{Detected: false, Reason: InsufficientDataReason}
		risk := classifier.FallbackRisk
		result.Concern, result.Risk = &concern, &risk

		log.DebugContext(ctx, "Not enough words for analysis", "words", result.Words, "min_words", p.minWords)
		p.commit(ctx, result)
		return result, nil
	}
	result.Sufficient = true

	window := Window(RenderHistory(messages), p.windowLines)

	// Each call's error is handled on its own below, so neither cancels the other.
	var (
		wg      sync.WaitGroup
		concern classifier.Concern
		risk    classifier.Risk
		cErr    error
		rErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		concern, cErr = p.classifier.DetectConcern(ctx, window)
	}()
	go func() {
		defer wg.Done()
		risk, rErr = p.classifier.ScoreRisk(ctx, window)
	}()
	wg.Wait()

	if cErr != nil {
		log.WarnContext(ctx, "Concern detection failed, keeping previous analysis", "error", cErr)
	} else {
		result.Concern = &concern
	}
	if rErr != nil {
		log.WarnContext(ctx, "Risk scoring failed, keeping previous score", "error", rErr)
	} else {
		result.Risk = &risk
	}

	p.commit(ctx, result)
	return result, nil
}

// commit writes each produced signal on its own; one failing does not stop
// the other.
func (p *Pipeline) commit(ctx context.Context, result Result) {
	log := p.log.With("user_id", result.UserID)

	if result.Concern != nil {
		dbCtx, cancel := context.WithTimeout(ctx, dbWriteTimeout)
		err := p.store.UpsertTextAnalysis(dbCtx, &database.TextAnalysis{
			UserID:     result.UserID,
			ResultText: result.Concern.Text(),
		})
		cancel()
		if err != nil {
			log.ErrorContext(ctx, "Failed to save text analysis", "error", err)
		}
	}

	if result.Risk != nil {
		dbCtx, cancel := context.WithTimeout(ctx, dbWriteTimeout)
		err := p.store.UpsertRiskScore(dbCtx, &database.RiskScore{
			UserID:   result.UserID,
			Percent:  result.Risk.Percent,
			Category: string(result.Risk.Category),
		})
		cancel()
		if err != nil {
			log.ErrorContext(ctx, "Failed to save risk score", "error", err)
		}
	}

	if result.Concern != nil && result.Risk != nil {
		log.InfoContext(ctx, "Analysis committed", "concern", result.Concern.Detected,
			"risk_percent", result.Risk.Percent, "risk_category", result.Risk.Category)
	}
}
