package tasks

import (
	"context"
	"log/slog"
	"strconv"
)

// CleanupTask removes entries older than the retention window.
type CleanupTask struct {
	Task
	collector     CollectorInterface
	retentionDays int
}

func NewCleanupTask(collector CollectorInterface, retentionDays int) *CleanupTask {
	return &CleanupTask{
		Task:          NewTask(TaskTypeCleanup, strconv.Itoa(retentionDays)),
		collector:     collector,
		retentionDays: retentionDays,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.collector.CleanupOldEntries(ctx, t.retentionDays)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"deleted", deleted,
		"retention_days", t.retentionDays)

	return nil
}
