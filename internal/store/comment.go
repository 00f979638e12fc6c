// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"featherpress/internal/models"
)

// CommentStore handles comments and their moderation.
type CommentStore struct {
	db DBTX
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db DBTX) *CommentStore {
	return &CommentStore{db: db}
}

const commentSelect = `SELECT cm.id, cm.post_id, cm.user_id, cm.parent_id, cm.body, cm.status,
	cm.user_ip, cm.user_agent, cm.created_at, cm.updated_at,
	u.username, u.full_name, p.title
FROM comments cm
JOIN posts p ON p.id = cm.post_id
LEFT JOIN users u ON u.id = cm.user_id`

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID, &c.PostID, &c.UserID, &c.ParentID, &c.Body, &c.Status,
		&c.UserIP, &c.UserAgent, &c.CreatedAt, &c.UpdatedAt,
		&c.Username, &c.FullName, &c.PostTitle,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) query(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create inserts a comment and fills its id and timestamps.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, user_id, parent_id, body, status, user_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, c.PostID, c.UserID, c.ParentID, c.Body, c.Status, c.UserIP, c.UserAgent,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// FindByID retrieves a comment. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// UpdateBody replaces the body and sends the comment back to moderation.
func (s *CommentStore) UpdateBody(ctx context.Context, id int64, body string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE comments SET body = $1, status = 'pending', updated_at = NOW() WHERE id = $2
	`, body, id)
	if err != nil {
		return fmt.Errorf("update comment body: %w", err)
	}
	return nil
}

// SetStatus moves a comment to status. Returns false if it does not exist.
func (s *CommentStore) SetStatus(ctx context.Context, id int64, status models.CommentStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return false, fmt.Errorf("set comment status: %w", err)
	}
	return rowsAffected(res) > 0, nil
}

// Delete removes a comment and its replies.
func (s *CommentStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	return rowsAffected(res) > 0, nil
}

// BatchSetStatus moves every listed comment to status in one statement.
func (s *CommentStore) BatchSetStatus(ctx context.Context, ids []int64, status models.CommentStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET status = $1, updated_at = NOW() WHERE id = ANY($2)`, status, ids)
	if err != nil {
		return 0, fmt.Errorf("batch set comment status: %w", err)
	}
	return rowsAffected(res), nil
}

// BatchDelete removes every listed comment in one statement.
func (s *CommentStore) BatchDelete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("batch delete comments: %w", err)
	}
	return rowsAffected(res), nil
}

// DeleteByPost removes every comment of a post.
func (s *CommentStore) DeleteByPost(ctx context.Context, postID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete comments by post: %w", err)
	}
	return nil
}

// DeleteByUser removes every comment written by a user and returns the count.
func (s *CommentStore) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete comments by user: %w", err)
	}
	return rowsAffected(res), nil
}

// ListApproved returns approved comments of a post, oldest first, and
// the total number of approved comments.
func (s *CommentStore) ListApproved(ctx context.Context, postID int64, page Page) ([]models.Comment, int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1 AND status = 'approved'`, postID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count approved comments: %w", err)
	}

	items, err := s.query(ctx, commentSelect+`
		WHERE cm.post_id = $1 AND cm.status = 'approved'
		ORDER BY cm.created_at ASC, cm.id ASC
		LIMIT $2 OFFSET $3`, postID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list approved comments: %w", err)
	}
	return items, total, nil
}

// CommentFilter narrows an admin comment listing.
type CommentFilter struct {
	Statuses []models.CommentStatus
	Search   string
	Author   string
	PostID   int64
	DateFrom *time.Time
	DateTo   *time.Time
	SortBy   string // created_at or updated_at
	Desc     bool
	Page     Page
}

func (f CommentFilter) where(a *args) string {
	var where []string
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		where = append(where, "cm.status = ANY("+a.add(statuses)+")")
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		ph := a.add(likePattern(search))
		where = append(where, "(cm.body ILIKE "+ph+" OR u.username ILIKE "+ph+" OR u.full_name ILIKE "+ph+")")
	}
	if f.Author != "" {
		where = append(where, "u.username = "+a.add(f.Author))
	}
	if f.PostID > 0 {
		where = append(where, "cm.post_id = "+a.add(f.PostID))
	}
	if f.DateFrom != nil {
		where = append(where, "cm.created_at >= "+a.add(*f.DateFrom))
	}
	if f.DateTo != nil {
		where = append(where, "cm.created_at <= "+a.add(*f.DateTo))
	}
	if len(where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(where, " AND ")
}

// List returns one filtered page of comments and the filtered total.
func (s *CommentStore) List(ctx context.Context, f CommentFilter) ([]models.Comment, int64, error) {
	var a args
	cond := f.where(&a)

	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM comments cm
		JOIN posts p ON p.id = cm.post_id
		LEFT JOIN users u ON u.id = cm.user_id`+cond, a...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	sortCol := "cm.created_at"
	if f.SortBy == "updated_at" {
		sortCol = "cm.updated_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	limit, offset := a.add(f.Page.Limit), a.add(f.Page.Offset())

	items, err := s.query(ctx, commentSelect+cond+
		` ORDER BY `+sortCol+` `+dir+`, cm.id `+dir+` LIMIT `+limit+` OFFSET `+offset, a...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return items, total, nil
}

// Stats counts comments per status.
func (s *CommentStore) Stats(ctx context.Context) (*models.CommentStats, error) {
	var st models.CommentStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'spam'),
			COUNT(*) FILTER (WHERE status = 'denied')
		FROM comments
	`).Scan(&st.Total, &st.Pending, &st.Approved, &st.Spam, &st.Denied)
	if err != nil {
		return nil, fmt.Errorf("comment stats: %w", err)
	}
	return &st, nil
}

// TotalsByPost counts all comments of each listed post, across every
// status, in one aggregate query.
func (s *CommentStore) TotalsByPost(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	totals := make(map[int64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return totals, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, COUNT(*) FROM comments WHERE post_id = ANY($1) GROUP BY post_id
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("count comments by post: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan comment total: %w", err)
		}
		totals[id] = n
	}
	return totals, rows.Err()
}
