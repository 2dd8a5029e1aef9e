package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const reanalysisTimeout = 30 * time.Minute

// newRiskReanalysisTask reruns the analysis for every user with messages, one
// user at a time.
func newRiskReanalysisTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskRiskReanalysis)

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled risk reanalysis task...")
		startTime := time.Now()

		timeoutCtx, cancel := context.WithTimeout(ctx, reanalysisTimeout)
		defer cancel()

		userIDs, err := deps.Store.GetMessageUserIDs(timeoutCtx)
		if err != nil {
			return fmt.Errorf("failed to list users for reanalysis: %w", err)
		}

		var analyzed, failed int
		for _, userID := range userIDs {
			if timeoutCtx.Err() != nil {
				log.WarnContext(ctx, "Risk reanalysis interrupted", "error", timeoutCtx.Err(),
					"analyzed", analyzed, "total", len(userIDs))
				return fmt.Errorf("risk reanalysis interrupted after %d of %d users: %w", analyzed, len(userIDs), timeoutCtx.Err())
			}

			if _, err := deps.Analyzer.Analyze(timeoutCtx, userID); err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					continue
				}
				log.ErrorContext(ctx, "Reanalysis failed for user", "user_id", userID, "error", err)
				failed++
				continue
			}
			analyzed++
		}

		log.InfoContext(ctx, "Risk reanalysis completed", "users", len(userIDs), "analyzed", analyzed,
			"failed", failed, "duration", time.Since(startTime))
		if failed > 0 && analyzed == 0 {
			return fmt.Errorf("risk reanalysis failed for all %d users", failed)
		}
		return nil
	}
}
