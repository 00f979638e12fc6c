// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"featherpress/internal/models"
)

// AttributeStore handles the one-to-one post_attributes rows.
type AttributeStore struct {
	db DBTX
}

// NewAttributeStore creates a new AttributeStore.
func NewAttributeStore(db DBTX) *AttributeStore {
	return &AttributeStore{db: db}
}

const attributeColumns = `a.id, a.post_id, a.status, a.pinned, a.slug, a.scheduled_at,
	a.visibility, a.visibility_groups, a.allow_comments, a.original_work,
	a.rights_holder, a.license, a.created_at, a.updated_at`

func attributeFields(a *models.PostAttribute, groups *[]byte) []any {
	return []any{
		&a.ID, &a.PostID, &a.Status, &a.Pinned, &a.Slug, &a.ScheduledAt,
		&a.Visibility, groups, &a.AllowComments, &a.OriginalWork,
		&a.RightsHolder, &a.License, &a.CreatedAt, &a.UpdatedAt,
	}
}

func scanAttribute(row scanner) (*models.PostAttribute, error) {
	var a models.PostAttribute
	var groups []byte
	if err := row.Scan(attributeFields(&a, &groups)...); err != nil {
		return nil, err
	}
	if err := decodeGroups(groups, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts the attribute row of a post and fills the generated
// id and timestamps.
func (s *AttributeStore) Create(ctx context.Context, a *models.PostAttribute) error {
	groups, err := groupsJSON(a.VisibilityGroups)
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO post_attributes (post_id, status, pinned, slug, scheduled_at,
			visibility, visibility_groups, allow_comments, original_work, rights_holder, license)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, a.PostID, a.Status, a.Pinned, a.Slug, a.ScheduledAt,
		a.Visibility, groups, a.AllowComments, a.OriginalWork, a.RightsHolder, a.License,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post attribute: %w", err)
	}
	return nil
}

// Update writes every mutable column and bumps updated_at.
func (s *AttributeStore) Update(ctx context.Context, a *models.PostAttribute) error {
	groups, err := groupsJSON(a.VisibilityGroups)
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, `
		UPDATE post_attributes SET
			status = $1, pinned = $2, slug = $3, scheduled_at = $4,
			visibility = $5, visibility_groups = $6::jsonb, allow_comments = $7,
			original_work = $8, rights_holder = $9, license = $10, updated_at = NOW()
		WHERE post_id = $11
		RETURNING updated_at
	`, a.Status, a.Pinned, a.Slug, a.ScheduledAt,
		a.Visibility, groups, a.AllowComments,
		a.OriginalWork, a.RightsHolder, a.License, a.PostID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update post attribute: %w", err)
	}
	return nil
}

// FindByPostID returns the attribute row of a post. Returns nil if missing.
func (s *AttributeStore) FindByPostID(ctx context.Context, postID int64) (*models.PostAttribute, error) {
	a, err := scanAttribute(s.db.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM post_attributes a WHERE a.post_id = $1`, postID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post attribute: %w", err)
	}
	return a, nil
}

// SlugExists reports whether slug belongs to a post other than excludePostID.
func (s *AttributeStore) SlugExists(ctx context.Context, slug string, excludePostID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM post_attributes WHERE slug = $1 AND post_id <> $2)`,
		slug, excludePostID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attribute slug: %w", err)
	}
	return exists, nil
}

// DeleteByPost removes the attribute row of a post.
func (s *AttributeStore) DeleteByPost(ctx context.Context, postID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM post_attributes WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete post attribute: %w", err)
	}
	return nil
}

// SetStatus sets the status of every listed post and returns the count.
func (s *AttributeStore) SetStatus(ctx context.Context, postIDs []int64, status models.PostStatus) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE post_attributes SET status = $1, updated_at = NOW() WHERE post_id = ANY($2)
	`, status, postIDs)
	if err != nil {
		return 0, fmt.Errorf("set post status: %w", err)
	}
	return rowsAffected(res), nil
}

func groupsJSON(groups []int64) (string, error) {
	if groups == nil {
		groups = []int64{}
	}
	s, err := jsonText(groups)
	if err != nil {
		return "", fmt.Errorf("encode visibility groups: %w", err)
	}
	return s, nil
}
