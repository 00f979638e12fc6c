// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"time"

	"featherpress/internal/models"
)

// TagStore handles tags. A tag is a (post, name) row; tag identity
// across posts is the name.
type TagStore struct {
	db DBTX
}

// NewTagStore creates a new TagStore.
func NewTagStore(db DBTX) *TagStore {
	return &TagStore{db: db}
}

// Add attaches names to a post. Names already present are skipped.
func (s *TagStore) Add(ctx context.Context, postID, userID int64, names []string) error {
	for _, name := range names {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO tags (post_id, user_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (post_id, name) DO NOTHING
		`, postID, userID, name)
		if err != nil {
			return fmt.Errorf("add tag %q: %w", name, err)
		}
	}
	return nil
}

// DeleteByPost removes every tag of a post.
func (s *TagStore) DeleteByPost(ctx context.Context, postID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete tags by post: %w", err)
	}
	return nil
}

// DeleteByUser removes tags created by a user and returns the count.
func (s *TagStore) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete tags by user: %w", err)
	}
	return rowsAffected(res), nil
}

// Counts returns every tag name with its post count. With limit > 0 the
// most used names come first; otherwise names are alphabetical.
func (s *TagStore) Counts(ctx context.Context, limit int) ([]models.TagCount, error) {
	query := `SELECT name, COUNT(DISTINCT post_id) FROM tags GROUP BY name ORDER BY name`
	var qargs []any
	if limit > 0 {
		query = `SELECT name, COUNT(DISTINCT post_id) AS n FROM tags GROUP BY name ORDER BY n DESC, name LIMIT $1`
		qargs = append(qargs, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, qargs...)
	if err != nil {
		return nil, fmt.Errorf("count tags: %w", err)
	}
	defer rows.Close()

	items := []models.TagCount{}
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Name, &tc.PostCount); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		items = append(items, tc)
	}
	return items, rows.Err()
}

// Stats summarises tag usage. Names created at or after recentSince
// count as recent.
func (s *TagStore) Stats(ctx context.Context, recentSince time.Time, top int) (*models.TagStats, error) {
	st := models.TagStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT name), COUNT(*), COUNT(DISTINCT post_id),
			(SELECT COUNT(*) FROM (
				SELECT name FROM tags GROUP BY name HAVING MIN(created_at) >= $1
			) recent)
		FROM tags
	`, recentSince).Scan(&st.Unique, &st.Assignments, &st.TaggedPosts, &st.Recent)
	if err != nil {
		return nil, fmt.Errorf("tag stats: %w", err)
	}
	if st.Popular, err = s.Counts(ctx, top); err != nil {
		return nil, err
	}
	return &st, nil
}

// NameExists reports whether any post carries name.
func (s *TagStore) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check tag name: %w", err)
	}
	return exists, nil
}

// Rename changes a tag name on every post and returns the row count.
func (s *TagStore) Rename(ctx context.Context, from, to string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tags SET name = $1 WHERE name = $2`, to, from)
	if err != nil {
		return 0, fmt.Errorf("rename tag: %w", err)
	}
	return rowsAffected(res), nil
}

// DeleteName removes a tag from every post and returns the row count.
func (s *TagStore) DeleteName(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("delete tag: %w", err)
	}
	return rowsAffected(res), nil
}

// PostIDs returns the ids of posts carrying name.
func (s *TagStore) PostIDs(ctx context.Context, name string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT post_id FROM tags WHERE name = $1 ORDER BY post_id`, name)
	if err != nil {
		return nil, fmt.Errorf("list tag posts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
