package tasks

import (
	"context"
	"log/slog"

	"github.com/feedkeep/feedkeep/app/collector"
)

// CollectAllTask runs a bulk collection across all active feeds. The
// scheduled trigger uses the sequential mode; manual submissions fan out
// through the collector's worker pool. Both produce equivalent per-feed
// outcomes.
type CollectAllTask struct {
	Task
	collector CollectorInterface
	parallel  bool
}

func NewCollectAllTask(collector CollectorInterface, parallel bool) *CollectAllTask {
	return &CollectAllTask{
		Task:      NewTask(TaskTypeCollectAll, ""),
		collector: collector,
		parallel:  parallel,
	}
}

func (t *CollectAllTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var stats collector.Stats
	if t.parallel {
		stats = t.collector.CollectAll(ctx)
	} else {
		stats = t.collector.CollectAllSequential(ctx)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"success", stats.Success,
		"errors", stats.Errors,
		"new_entries", stats.NewEntries)

	return nil
}
