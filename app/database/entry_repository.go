package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// EntryRepository handles database operations for entries
type EntryRepository struct {
	q Querier
}

func NewEntryRepository(q Querier) *EntryRepository {
	return &EntryRepository{q: q}
}

// FindDuplicate reports whether an entry matching the dedup key already
// exists. The lookup matches original_id OR link across the whole entries
// table, not scoped to one feed: two feeds syndicating the same article
// cross-suppress each other.
func (r *EntryRepository) FindDuplicate(ctx context.Context, originalID, link string) (bool, error) {
	var id string
	err := r.q.QueryRowContext(ctx, `
		SELECT id FROM entries WHERE original_id = ? OR link = ? LIMIT 1
	`, originalID, link).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate entry: %w", err)
	}

	return true, nil
}

func (r *EntryRepository) Insert(ctx context.Context, entry *Entry) error {
	var extras any
	if entry.Extras != nil {
		data, err := json.Marshal(entry.Extras)
		if err != nil {
			return fmt.Errorf("failed to encode entry extras: %w", err)
		}
		extras = string(data)
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO entries (id, feed_id, title, link, published, summary,
		                     content, author, original_id, extras, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.FeedID, entry.Title, entry.Link, formatTime(entry.Published),
		entry.Summary, entry.Content, entry.Author, entry.OriginalID, extras,
		formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt))

	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

func (r *EntryRepository) Get(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	var published, extras *string
	var createdAt, updatedAt string

	err := r.q.QueryRowContext(ctx, `
		SELECT id, feed_id, title, link, published, summary, content,
		       author, original_id, extras, created_at, updated_at
		FROM entries
		WHERE id = ?
	`, id).Scan(
		&entry.ID, &entry.FeedID, &entry.Title, &entry.Link, &published,
		&entry.Summary, &entry.Content, &entry.Author, &entry.OriginalID,
		&extras, &createdAt, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entry %s: %w", id, ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	if t := parseNullTime(published); t != nil {
		entry.Published = *t
	}
	entry.CreatedAt = parseTime(createdAt)
	entry.UpdatedAt = parseTime(updatedAt)

	if extras != nil && *extras != "" {
		var bag EntryExtras
		if err := json.Unmarshal([]byte(*extras), &bag); err != nil {
			return nil, fmt.Errorf("failed to decode entry extras: %w", err)
		}
		entry.Extras = &bag
	}

	return &entry, nil
}

// UpdateContent replaces the content field with extracted full-article text.
func (r *EntryRepository) UpdateContent(ctx context.Context, id string, content string, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE entries SET content = ?, updated_at = ? WHERE id = ?
	`, content, formatTime(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update entry content: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s: %w", id, ErrEntryNotFound)
	}

	return nil
}

func (r *EntryRepository) CountForFeed(ctx context.Context, feedID int64) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE feed_id = ?`, feedID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes entries published before the cutoff and returns
// the number deleted. Tag associations go with them via ON DELETE CASCADE.
func (r *EntryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM entries WHERE published < ?
	`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old entries: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted entries: %w", err)
	}

	return deleted, nil
}
