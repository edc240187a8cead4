package collector

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/feedkeep/feedkeep/app/database"
	"github.com/feedkeep/feedkeep/app/feed"
)

// Stats aggregates the outcome of a collection run.
type Stats struct {
	Success    int
	Errors     int
	NewEntries int
}

// Collector runs the ingestion pipeline: fetch, parse, dedupe, sanitize,
// persist, tag-link, feed health update. Each feed is processed in its own
// transaction scope; one feed's failure never affects another.
type Collector struct {
	db          *database.DB
	feedRepo    *database.FeedRepository
	fetcher     *feed.Fetcher
	parser      *feed.Parser
	extractor   *feed.Extractor
	workerCount int
}

func New(db *database.DB, fetcher *feed.Fetcher, parser *feed.Parser, extractor *feed.Extractor, workerCount int) *Collector {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Collector{
		db:          db,
		feedRepo:    database.NewFeedRepository(db),
		fetcher:     fetcher,
		parser:      parser,
		extractor:   extractor,
		workerCount: workerCount,
	}
}

// CollectAll processes every active feed through a fixed-size worker pool.
// Feeds beyond the worker cap queue behind active workers and complete in
// indeterminate order.
func (c *Collector) CollectAll(ctx context.Context) Stats {
	feeds, err := c.feedRepo.GetActiveFeeds(ctx)
	if err != nil {
		slog.Error("Failed to list active feeds", "error", err)
		return Stats{}
	}

	slog.Info("Starting bulk collection", "feeds", len(feeds), "workers", c.workerCount)

	jobs := make(chan database.Feed)
	results := make(chan feedResult)

	var wg sync.WaitGroup
	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				count, err := c.collectFeed(ctx, &f)
				results <- feedResult{newEntries: count, err: err}
			}
		}()
	}

	go func() {
		for _, f := range feeds {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var stats Stats
	for result := range results {
		stats.merge(result)
	}

	slog.Info("Bulk collection finished",
		"success", stats.Success, "errors", stats.Errors, "new_entries", stats.NewEntries)

	return stats
}

// CollectAllSequential processes active feeds one at a time. This is the
// mode used by the periodic scheduled trigger, trading throughput for
// resource predictability; per-feed outcomes are identical to CollectAll.
func (c *Collector) CollectAllSequential(ctx context.Context) Stats {
	feeds, err := c.feedRepo.GetActiveFeeds(ctx)
	if err != nil {
		slog.Error("Failed to list active feeds", "error", err)
		return Stats{}
	}

	slog.Info("Starting sequential collection", "feeds", len(feeds))

	var stats Stats
	for _, f := range feeds {
		count, err := c.collectFeed(ctx, &f)
		stats.merge(feedResult{newEntries: count, err: err})
	}

	slog.Info("Sequential collection finished",
		"success", stats.Success, "errors", stats.Errors, "new_entries", stats.NewEntries)

	return stats
}

// CollectFeed runs the pipeline for one feed. Unknown ids are reported via
// database.ErrFeedNotFound, never a crash.
func (c *Collector) CollectFeed(ctx context.Context, feedID int64) (int, error) {
	f, err := c.feedRepo.GetFeed(ctx, feedID)
	if err != nil {
		return 0, err
	}

	return c.collectFeed(ctx, f)
}

type feedResult struct {
	newEntries int
	err        error
}

func (s *Stats) merge(r feedResult) {
	if r.err != nil {
		s.Errors++
		return
	}
	s.Success++
	s.NewEntries += r.newEntries
}

func (c *Collector) collectFeed(ctx context.Context, f *database.Feed) (int, error) {
	slog.Debug("Collecting feed", "url", f.URL)

	data, err := c.fetcher.Fetch(ctx, f.URL)
	if err != nil {
		c.recordFailure(ctx, f, err)
		return 0, err
	}

	metadata, items, warning, err := c.parser.Run(data)
	if err != nil {
		c.recordFailure(ctx, f, err)
		return 0, err
	}
	if warning {
		slog.Warn("Feed is not well-formed, recovered best-effort", "url", f.URL)
	}

	newCount, err := c.storeItems(ctx, f, items)
	if err != nil {
		c.recordFailure(ctx, f, err)
		return 0, err
	}

	c.recordSuccess(ctx, f, metadata)

	slog.Info("Feed collected", "url", f.URL, "total", len(items), "new_entries", newCount)

	return newCount, nil
}

// storeItems persists the new items of one feed inside a single transaction.
// Item handling is sequential: each insert is visible to the next item's
// duplicate check, so a feed repeating an item within one run cannot
// double-insert. A persistence failure aborts the remaining items and rolls
// back this feed's in-flight work only.
func (c *Collector) storeItems(ctx context.Context, f *database.Feed, items []feed.Item) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entryRepo := database.NewEntryRepository(tx)
	tagRepo := database.NewTagRepository(tx)

	now := time.Now().UTC()
	newCount := 0

	for _, item := range items {
		inserted, err := c.storeItem(ctx, entryRepo, tagRepo, f.ID, item, now)
		if err != nil {
			return 0, err
		}
		if inserted {
			newCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit entries: %w", err)
	}

	return newCount, nil
}

func (c *Collector) storeItem(ctx context.Context, entryRepo *database.EntryRepository, tagRepo *database.TagRepository, feedID int64, item feed.Item, now time.Time) (bool, error) {
	originalID := cmp.Or(item.GUID, item.Link)

	duplicate, err := entryRepo.FindDuplicate(ctx, originalID, item.Link)
	if err != nil {
		return false, err
	}
	if duplicate {
		return false, nil
	}

	published := now
	if item.Published != nil {
		published = item.Published.UTC()
	}

	entry := &database.Entry{
		ID:         uuid.NewString(),
		FeedID:     feedID,
		Title:      item.Title,
		Link:       item.Link,
		Published:  published,
		Summary:    feed.Sanitize(item.Summary),
		Content:    feed.Sanitize(item.Content),
		Author:     item.Author,
		OriginalID: originalID,
		Extras:     convertExtras(item.Extras),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := entryRepo.Insert(ctx, entry); err != nil {
		return false, err
	}

	seen := make(map[string]bool, len(item.Tags))
	for _, name := range item.Tags {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tagID, err := tagRepo.GetOrCreate(ctx, name)
		if err != nil {
			return false, err
		}
		if err := tagRepo.Attach(ctx, entry.ID, tagID); err != nil {
			return false, err
		}
	}

	return true, nil
}

// recordSuccess refreshes the feed's parse-derived metadata, keeping prior
// values for fields the new parse left empty, and resets its health.
func (c *Collector) recordSuccess(ctx context.Context, f *database.Feed, metadata *feed.Metadata) {
	title := cmp.Or(metadata.Title, f.Title)
	description := cmp.Or(metadata.Description, f.Description)
	siteURL := cmp.Or(metadata.Link, f.SiteURL)
	lang := cmp.Or(metadata.Language, f.Language)

	if err := c.feedRepo.UpdateMetadata(ctx, f.ID, title, description, siteURL, lang); err != nil {
		slog.Error("Failed to update feed metadata", "url", f.URL, "error", err)
	}

	if err := c.feedRepo.MarkSuccess(ctx, f.ID, time.Now().UTC()); err != nil {
		slog.Error("Failed to reset feed health", "url", f.URL, "error", err)
	}
}

// recordFailure runs outside the feed's entry transaction so health fields
// survive the rollback of in-flight work.
func (c *Collector) recordFailure(ctx context.Context, f *database.Feed, cause error) {
	slog.Error("Feed collection failed", "url", f.URL, "error", cause)

	count, deactivated, err := c.feedRepo.MarkFailure(ctx, f.ID, cause.Error(), time.Now().UTC())
	if err != nil {
		slog.Error("Failed to record feed failure", "url", f.URL, "error", err)
		return
	}

	if deactivated {
		slog.Warn("Feed deactivated after consecutive failures", "url", f.URL, "failures", count)
	}
}

func convertExtras(extras feed.ItemExtras) *database.EntryExtras {
	bag := &database.EntryExtras{
		Image: extras.Image,
		Media: extras.Media,
	}

	for _, e := range extras.Enclosures {
		bag.Enclosures = append(bag.Enclosures, database.Enclosure{
			URL:    e.URL,
			Type:   e.Type,
			Length: e.Length,
		})
	}

	if extras.Geo != nil {
		bag.Geo = &database.GeoPoint{Lat: extras.Geo.Lat, Long: extras.Geo.Long}
	}

	if bag.Image == "" && len(bag.Enclosures) == 0 && len(bag.Media) == 0 && bag.Geo == nil {
		return nil
	}

	return bag
}
