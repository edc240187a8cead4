package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TagRepository handles database operations for tags and entry-tag links
type TagRepository struct {
	q Querier
}

func NewTagRepository(q Querier) *TagRepository {
	return &TagRepository{q: q}
}

// GetOrCreate returns the id of the tag with the given name, creating it on
// first reference. Tags are never deleted by the collection pipeline.
func (r *TagRepository) GetOrCreate(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up tag: %w", err)
	}

	res, err := r.q.ExecContext(ctx, `
		INSERT INTO tags (name, created_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to create tag: %w", err)
	}

	if inserted, err := res.RowsAffected(); err == nil && inserted > 0 {
		if id, err := res.LastInsertId(); err == nil {
			return id, nil
		}
	}

	// Lost the race to a concurrent worker; the tag exists now.
	err = r.q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up tag after insert: %w", err)
	}

	return id, nil
}

// Attach links an entry to a tag. Attaching the same pair twice is a no-op.
func (r *TagRepository) Attach(ctx context.Context, entryID string, tagID int64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO entry_tags (entry_id, tag_id) VALUES (?, ?)
	`, entryID, tagID)

	if err != nil {
		return fmt.Errorf("failed to attach tag: %w", err)
	}

	return nil
}

func (r *TagRepository) ListForEntry(ctx context.Context, entryID string) ([]Tag, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN entry_tags et ON et.tag_id = t.id
		WHERE et.entry_id = ?
		ORDER BY t.name
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		var createdAt string
		if err := rows.Scan(&tag.ID, &tag.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tag.CreatedAt = parseTime(createdAt)
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

func (r *TagRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return count, nil
}
