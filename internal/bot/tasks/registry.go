package tasks

import (
	"context"
)

// Task names as used under scheduler.tasks in the configuration.
const (
	TaskSQLMaintenance = "sql_maintenance"
	TaskRiskReanalysis = "risk_reanalysis"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context
// must be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns every task keyed by its configuration name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		TaskSQLMaintenance: newSQLMaintenanceTask(deps),
		TaskRiskReanalysis: newRiskReanalysisTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
