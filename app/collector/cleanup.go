package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/feedkeep/feedkeep/app/database"
)

// CleanupOldEntries deletes all entries published more than retentionDays
// ago and returns the number removed.
func (c *Collector) CleanupOldEntries(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	deleted, err := database.NewEntryRepository(c.db).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	slog.Info("Old entries removed", "deleted", deleted, "retention_days", retentionDays)

	return deleted, nil
}
