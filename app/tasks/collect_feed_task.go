package tasks

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/feedkeep/feedkeep/app/database"
)

// CollectFeedTask runs the collection pipeline for one specified feed.
type CollectFeedTask struct {
	Task
	collector CollectorInterface
	feedID    int64
}

func NewCollectFeedTask(collector CollectorInterface, feedID int64) *CollectFeedTask {
	return &CollectFeedTask{
		Task:      NewTask(TaskTypeCollectFeed, strconv.FormatInt(feedID, 10)),
		collector: collector,
		feedID:    feedID,
	}
}

func (t *CollectFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	newEntries, err := t.collector.CollectFeed(ctx, t.feedID)
	if errors.Is(err, database.ErrFeedNotFound) {
		// Reported, not retried: no amount of retrying makes an unknown
		// feed id exist.
		slog.Error("Feed not found", "feed_id", t.feedID)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed_id", t.feedID,
		"duration", t.GetDuration(),
		"new_entries", newEntries)

	return nil
}
