// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
)

// EngagementStore handles likes, views and shares.
type EngagementStore struct {
	db DBTX
}

// NewEngagementStore creates a new EngagementStore.
func NewEngagementStore(db DBTX) *EngagementStore {
	return &EngagementStore{db: db}
}

// Unlike removes a like and reports whether one existed.
func (s *EngagementStore) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return rowsAffected(res) > 0, nil
}

// Liked reports whether the user likes the post.
func (s *EngagementStore) Liked(ctx context.Context, postID, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`, postID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("find like: %w", err)
	}
	return ok, nil
}

// Like inserts a like. A concurrent duplicate surfaces as a unique
// violation; see IsUniqueViolation.
func (s *EngagementStore) Like(ctx context.Context, postID, userID int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// RecordView inserts a view unless the viewer already has one for the
// post. Signed-in viewers are keyed by user, anonymous ones by ip.
func (s *EngagementStore) RecordView(ctx context.Context, postID int64, userID *int64, ip string) error {
	var err error
	if userID != nil {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO views (post_id, user_id, ip) VALUES ($1, $2, NULLIF($3, ''))
			ON CONFLICT (post_id, user_id) WHERE user_id IS NOT NULL DO NOTHING
		`, postID, *userID, ip)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO views (post_id, ip) VALUES ($1, $2)
			ON CONFLICT (post_id, ip) WHERE user_id IS NULL DO NOTHING
		`, postID, ip)
	}
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// RecordShare inserts a share event.
func (s *EngagementStore) RecordShare(ctx context.Context, postID, userID int64, platform string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shares (post_id, user_id, platform) VALUES ($1, $2, $3)`, postID, userID, platform)
	if err != nil {
		return fmt.Errorf("record share: %w", err)
	}
	return nil
}

func (s *EngagementStore) count(ctx context.Context, table string, postID int64) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE post_id = $1`, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// CountLikes returns the like count of a post.
func (s *EngagementStore) CountLikes(ctx context.Context, postID int64) (int64, error) {
	return s.count(ctx, "likes", postID)
}

// CountViews returns the view count of a post.
func (s *EngagementStore) CountViews(ctx context.Context, postID int64) (int64, error) {
	return s.count(ctx, "views", postID)
}

// CountShares returns the share count of a post.
func (s *EngagementStore) CountShares(ctx context.Context, postID int64) (int64, error) {
	return s.count(ctx, "shares", postID)
}

// DeleteByPost removes views, likes and shares of a post, in that order.
func (s *EngagementStore) DeleteByPost(ctx context.Context, postID int64) error {
	for _, table := range []string{"views", "likes", "shares"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE post_id = $1`, postID); err != nil {
			return fmt.Errorf("delete %s by post: %w", table, err)
		}
	}
	return nil
}

// EngagementCounts are the rows removed by DeleteByUser.
type EngagementCounts struct {
	Likes  int64
	Shares int64
	Views  int64
}

// DeleteByUser removes every like, share and view made by a user.
func (s *EngagementStore) DeleteByUser(ctx context.Context, userID int64) (EngagementCounts, error) {
	var c EngagementCounts
	for _, t := range []struct {
		table string
		n     *int64
	}{{"likes", &c.Likes}, {"shares", &c.Shares}, {"views", &c.Views}} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE user_id = $1`, userID)
		if err != nil {
			return c, fmt.Errorf("delete %s by user: %w", t.table, err)
		}
		*t.n = rowsAffected(res)
	}
	return c, nil
}
