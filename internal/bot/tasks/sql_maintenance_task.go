package tasks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mentalx/mentalxbot/internal/database"
)

// newSQLMaintenanceTask compacts the database file and logs how many bytes the
// run reclaimed, when the file can be measured.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskSQLMaintenance)

	var dbPath string
	if deps.Config != nil {
		dbPath = database.ExtractDBNameFromPath(deps.Config.Database.Path)
	}

	return func(ctx context.Context) error {
		before := fileSize(dbPath)
		start := time.Now()

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Database maintenance failed", "error", err, "duration", time.Since(start))
			return fmt.Errorf("database maintenance: %w", err)
		}

		attrs := []any{"duration", time.Since(start)}
		if before >= 0 {
			if after := fileSize(dbPath); after >= 0 {
				attrs = append(attrs, "size_before", before, "size_after", after, "reclaimed", before-after)
			}
		}
		log.InfoContext(ctx, "Database maintenance finished", attrs...)
		return nil
	}
}

// fileSize returns -1 when path is empty or cannot be stat'ed.
func fileSize(path string) int64 {
	if path == "" {
		return -1
	}
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
