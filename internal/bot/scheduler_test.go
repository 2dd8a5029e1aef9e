package bot

import (
	"context"
	"testing"
	"time"

	"github.com/mentalx/mentalxbot/internal/bot/tasks"
	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/logger"
)

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":  {Enabled: true, Schedule: "0 0 4 * * *"},
		"disabled": {Enabled: false, Schedule: "0 0 4 * * *"},
		"missing":  {Enabled: true, Schedule: "0 0 4 * * *"},
	}}
	noop := func(context.Context) error { return nil }
	taskMap := map[string]tasks.ScheduledTaskFunc{"enabled": noop, "disabled": noop}

	s, err := NewScheduler(logger.Discard(), cfg, time.UTC, taskMap)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() error = nil, want error")
	}
	if got := len(s.scheduler.Jobs()); got != 1 {
		t.Errorf("scheduled jobs = %d, want 1", got)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestScheduler_InvalidCronSkipped(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"bad": {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{"bad": func(context.Context) error { return nil }}

	s, err := NewScheduler(logger.Discard(), cfg, nil, taskMap)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = s.Stop() }()

	if got := len(s.scheduler.Jobs()); got != 0 {
		t.Errorf("scheduled jobs = %d, want 0", got)
	}
}
