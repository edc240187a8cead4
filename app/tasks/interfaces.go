package tasks

import (
	"context"

	"github.com/feedkeep/feedkeep/app/collector"
)

// CollectorInterface is the slice of the collector the task layer drives.
type CollectorInterface interface {
	CollectAll(ctx context.Context) collector.Stats
	CollectAllSequential(ctx context.Context) collector.Stats
	CollectFeed(ctx context.Context, feedID int64) (int, error)
	ExtractFullArticle(ctx context.Context, entryID string) error
	CleanupOldEntries(ctx context.Context, retentionDays int) (int64, error)
}

// TaskSchedulerInterface is the asynchronous task-submission surface. Submit
// methods are fire-and-forget: they enqueue a unit of work and return its
// task id as the acknowledgement, not a result.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	SubmitBulkCollection() (string, error)
	SubmitFeedCollection(feedID int64) (string, error)
	SubmitArticleExtraction(entryID string) (string, error)
	SubmitCleanup(retentionDays int) (string, error)
}
