package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/feedkeep/feedkeep/app/database"
)

// ExtractFullArticle fetches the stored entry's source page and replaces its
// content with the extracted main-article text. On any failure the entry is
// left unmodified and the error is returned to the caller.
func (c *Collector) ExtractFullArticle(ctx context.Context, entryID string) error {
	entryRepo := database.NewEntryRepository(c.db)

	entry, err := entryRepo.Get(ctx, entryID)
	if err != nil {
		return err
	}

	if entry.Link == "" {
		return fmt.Errorf("entry %s has no link", entryID)
	}

	data, err := c.fetcher.FetchArticle(ctx, entry.Link)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	text, err := c.extractor.Run(data, entry.Link)
	if err != nil {
		return fmt.Errorf("failed to extract article: %w", err)
	}

	if err := entryRepo.UpdateContent(ctx, entryID, text, time.Now().UTC()); err != nil {
		return err
	}

	slog.Info("Full article extracted", "entry_id", entryID, "url", entry.Link, "content_length", len(text))

	return nil
}
