package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FeedRepository handles database operations for feeds
type FeedRepository struct {
	q Querier
}

func NewFeedRepository(q Querier) *FeedRepository {
	return &FeedRepository{q: q}
}

const feedColumns = `id, COALESCE(name, ''), url, title, description, site_url, language,
       last_fetched, active, error_count, COALESCE(last_error, ''), created_at, updated_at`

func (r *FeedRepository) scanFeed(row interface{ Scan(...any) error }) (*Feed, error) {
	var feed Feed
	var lastFetched *string
	var createdAt, updatedAt string

	err := row.Scan(
		&feed.ID, &feed.Name, &feed.URL, &feed.Title, &feed.Description,
		&feed.SiteURL, &feed.Language, &lastFetched, &feed.Active,
		&feed.ErrorCount, &feed.LastError, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	feed.LastFetched = parseNullTime(lastFetched)
	feed.CreatedAt = parseTime(createdAt)
	feed.UpdatedAt = parseTime(updatedAt)

	return &feed, nil
}

func (r *FeedRepository) GetFeed(ctx context.Context, id int64) (*Feed, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+feedColumns+`
		FROM feeds
		WHERE id = ?
	`, id)

	feed, err := r.scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("feed %d: %w", id, ErrFeedNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *FeedRepository) GetFeedByURL(ctx context.Context, url string) (*Feed, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+feedColumns+`
		FROM feeds
		WHERE url = ?
	`, url)

	feed, err := r.scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("feed %s: %w", url, ErrFeedNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	return feed, nil
}

// GetActiveFeeds returns all feeds currently eligible for collection.
func (r *FeedRepository) GetActiveFeeds(ctx context.Context) ([]Feed, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+feedColumns+`
		FROM feeds
		WHERE active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := r.scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// UpsertFeed registers a feed by URL. Existing feeds only have their name
// refreshed; health and metadata fields belong to the collection pipeline.
func (r *FeedRepository) UpsertFeed(ctx context.Context, name, url string) (int64, error) {
	existing, err := r.GetFeedByURL(ctx, url)
	if err == nil {
		_, err = r.q.ExecContext(ctx, `
			UPDATE feeds SET name = ?, updated_at = ? WHERE id = ?
		`, name, formatTime(time.Now()), existing.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to update feed: %w", err)
		}
		return existing.ID, nil
	}
	if !isNotFound(err) {
		return 0, err
	}

	now := formatTime(time.Now())
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO feeds (name, url, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, name, url, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert feed: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted feed id: %w", err)
	}

	return id, nil
}

// UpdateMetadata refreshes the parse-derived fields after a successful run.
func (r *FeedRepository) UpdateMetadata(ctx context.Context, id int64, title, description, siteURL, language string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE feeds
		SET title = ?, description = ?, site_url = ?, language = ?, updated_at = ?
		WHERE id = ?
	`, title, description, siteURL, language, formatTime(time.Now()), id)

	if err != nil {
		return fmt.Errorf("failed to update feed metadata: %w", err)
	}

	return nil
}

// MarkSuccess records a fully successful run: the consecutive-failure
// counter resets and the last error is cleared.
func (r *FeedRepository) MarkSuccess(ctx context.Context, id int64, fetchedAt time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE feeds
		SET error_count = 0, last_error = NULL, last_fetched = ?, updated_at = ?
		WHERE id = ?
	`, formatTime(fetchedAt), formatTime(time.Now()), id)

	if err != nil {
		return fmt.Errorf("failed to mark feed success: %w", err)
	}

	return nil
}

// MarkFailure increments the consecutive-failure counter and deactivates the
// feed once it reaches MaxErrorCount. Returns the new counter value and
// whether this call deactivated the feed. Reactivation is external only.
func (r *FeedRepository) MarkFailure(ctx context.Context, id int64, errMsg string, fetchedAt time.Time) (int, bool, error) {
	_, err := r.q.ExecContext(ctx, `
		UPDATE feeds
		SET error_count = error_count + 1,
		    last_error = ?,
		    last_fetched = ?,
		    updated_at = ?,
		    active = CASE WHEN error_count + 1 >= ? THEN 0 ELSE active END
		WHERE id = ?
	`, errMsg, formatTime(fetchedAt), formatTime(time.Now()), MaxErrorCount, id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to mark feed failure: %w", err)
	}

	var errorCount int
	var active bool
	err = r.q.QueryRowContext(ctx, `SELECT error_count, active FROM feeds WHERE id = ?`, id).
		Scan(&errorCount, &active)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read feed failure state: %w", err)
	}

	return errorCount, errorCount == MaxErrorCount && !active, nil
}

// SetActive flips the active flag. This is the administrative path; the
// collection pipeline itself never reactivates a feed.
func (r *FeedRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE feeds SET active = ?, updated_at = ? WHERE id = ?
	`, active, formatTime(time.Now()), id)

	if err != nil {
		return fmt.Errorf("failed to set feed active status: %w", err)
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrFeedNotFound) || errors.Is(err, ErrEntryNotFound)
}
