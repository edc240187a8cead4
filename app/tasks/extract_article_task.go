package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/feedkeep/feedkeep/app/database"
)

// ExtractArticleTask replaces one entry's content with the full article
// text extracted from its source page.
type ExtractArticleTask struct {
	Task
	collector CollectorInterface
	entryID   string
}

func NewExtractArticleTask(collector CollectorInterface, entryID string) *ExtractArticleTask {
	return &ExtractArticleTask{
		Task:      NewTask(TaskTypeExtractArticle, entryID),
		collector: collector,
		entryID:   entryID,
	}
}

func (t *ExtractArticleTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.collector.ExtractFullArticle(ctx, t.entryID)
	if errors.Is(err, database.ErrEntryNotFound) {
		slog.Error("Entry not found", "entry_id", t.entryID)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"entry_id", t.entryID,
		"duration", t.GetDuration())

	return nil
}
