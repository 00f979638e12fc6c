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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db DBTX
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `c.id, c.name, c.slug, c.description, c.display_order, c.is_listed,
	c.user_id, c.created_at, c.updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner, extra ...any) (*models.Category, error) {
	var c models.Category
	dest := []any{
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.DisplayOrder, &c.IsListed,
		&c.UserID, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns categories ordered by display_order, with post counts.
// listedOnly restricts the result to categories shown publicly.
func (s *CategoryStore) List(ctx context.Context, listedOnly bool) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`, COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		WHERE c.is_listed OR NOT $1
		GROUP BY c.id
		ORDER BY c.display_order, c.name
	`, listedOnly)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		var count int64
		c, err := scanCategory(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.PostCount = count
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories c WHERE c.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Detail retrieves a category with its post count. Returns nil if not
// found.
func (s *CategoryStore) Detail(ctx context.Context, id int64) (*models.Category, error) {
	var count int64
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`, (SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id)
		FROM categories c WHERE c.id = $1`, id), &count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category detail: %w", err)
	}
	c.PostCount = count
	return c, nil
}

// Search matches q against category names and descriptions, case
// insensitively, ordered by name.
func (s *CategoryStore) Search(ctx context.Context, q string, limit int) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`, (SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id)
		FROM categories c
		WHERE c.name ILIKE $1 OR c.description ILIKE $1
		ORDER BY c.name
		LIMIT $2
	`, likePattern(q), limit)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		var count int64
		c, err := scanCategory(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.PostCount = count
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByName retrieves a category by case-insensitive name. Returns nil
// if not found.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c WHERE LOWER(c.name) = LOWER($1) ORDER BY c.id LIMIT 1`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// SlugExists reports whether a category other than excludeID uses slug.
func (s *CategoryStore) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories AS c (name, slug, description, display_order, is_listed, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.DisplayOrder, c.IsListed, c.UserID,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, display_order = $4,
			is_listed = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Name, c.Slug, c.Description, c.DisplayOrder, c.IsListed, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID. Posts are detached (ON DELETE SET NULL).
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// DeleteMany removes several categories and returns how many went.
func (s *CategoryStore) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete categories: %w", err)
	}
	return rowsAffected(res), nil
}

// ReorderItem represents a single item in a reorder request.
type ReorderItem struct {
	ID           int64 `json:"id" validate:"required,gt=0"`
	DisplayOrder int   `json:"display_order"`
}

// Reorder updates display_order for several categories. Run it inside a
// transaction so the new order applies atomically.
func (s *CategoryStore) Reorder(ctx context.Context, items []ReorderItem) error {
	for _, item := range items {
		_, err := s.db.ExecContext(ctx,
			`UPDATE categories SET display_order = $1, updated_at = NOW() WHERE id = $2`,
			item.DisplayOrder, item.ID)
		if err != nil {
			return fmt.Errorf("reorder category %d: %w", item.ID, err)
		}
	}
	return nil
}

// NextDisplayOrder returns the display_order for a newly appended category.
func (s *CategoryStore) NextDisplayOrder(ctx context.Context) (int, error) {
	var maxOrder sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(display_order) FROM categories`).Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("max display order: %w", err)
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

// Stats summarises the category table.
func (s *CategoryStore) Stats(ctx context.Context) (*models.CategoryStats, error) {
	var st models.CategoryStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_listed),
			COUNT(*) FILTER (WHERE NOT is_listed),
			COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM posts p WHERE p.category_id = categories.id))
		FROM categories
	`).Scan(&st.Total, &st.Listed, &st.Unlisted, &st.WithPosts)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	return &st, nil
}
