// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"featherpress/internal/cache"
	"featherpress/internal/database"
	"featherpress/internal/models"
	"featherpress/internal/slug"
	"featherpress/internal/store"
)

// DefaultPopularTags is the size of the popular tag list.
const DefaultPopularTags = 10

// RecentTagWindow is how far back TagStats looks for new tag names.
const RecentTagWindow = 30 * 24 * time.Hour

const (
	minCategoryQuery    = 2
	categorySearchLimit = 50
)

// CategoryInput creates or updates a category.
type CategoryInput struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Slug         *string `json:"slug" validate:"omitempty,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	DisplayOrder *int    `json:"display_order" validate:"omitempty,gte=0"`
	IsListed     *bool   `json:"is_listed"`
}

// TagStatus is the bulk status applied through a tag. Archived posts
// become private.
type TagStatus string

const (
	TagPublished TagStatus = "published"
	TagDraft     TagStatus = "draft"
	TagArchived  TagStatus = "archived"
)

func (s TagStatus) postStatus() (models.PostStatus, bool) {
	switch s {
	case TagPublished:
		return models.PostStatusPublished, true
	case TagDraft:
		return models.PostStatusDraft, true
	case TagArchived:
		return models.PostStatusPrivate, true
	}
	return "", false
}

// Taxonomy manages categories and tags.
type Taxonomy struct {
	db    *sql.DB
	cache *cache.ResponseCache
}

// NewTaxonomy creates the category and tag service.
func NewTaxonomy(db *sql.DB, rc *cache.ResponseCache) *Taxonomy {
	return &Taxonomy{db: db, cache: rc}
}

// Categories lists categories by display order. listedOnly hides the
// ones not shown publicly.
func (s *Taxonomy) Categories(ctx context.Context, listedOnly bool) ([]models.Category, error) {
	return store.NewCategoryStore(s.db).List(ctx, listedOnly)
}

// CreateCategory adds a category at the end of the display order unless
// one is given.
func (s *Taxonomy) CreateCategory(ctx context.Context, in CategoryInput, userID int64) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("category name is required")
	}
	c := &models.Category{Name: name, Description: trimmed(in.Description), IsListed: true, UserID: &userID}
	if in.IsListed != nil {
		c.IsListed = *in.IsListed
	}
	if in.Slug != nil {
		c.Slug = slug.Generate(*in.Slug)
	}
	if in.DisplayOrder != nil {
		c.DisplayOrder = *in.DisplayOrder
	} else {
		c.DisplayOrder = -1
	}
	return createCategory(ctx, store.NewCategoryStore(s.db), c)
}

// UpdateCategory replaces the fields present in in.
func (s *Taxonomy) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*models.Category, error) {
	cats := store.NewCategoryStore(s.db)
	c, err := s.category(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Description != nil {
		c.Description = trimmed(in.Description)
	}
	if in.DisplayOrder != nil {
		c.DisplayOrder = *in.DisplayOrder
	}
	if in.IsListed != nil {
		c.IsListed = *in.IsListed
	}
	if in.Slug != nil {
		base := slug.Generate(*in.Slug)
		if base == "" {
			base = slug.Generate(c.Name)
		}
		if base != c.Slug {
			c.Slug, err = slug.Unique(ctx, base, func(ctx context.Context, candidate string) (bool, error) {
				return cats.SlugExists(ctx, candidate, c.ID)
			})
			if err != nil {
				return nil, err
			}
		}
	}
	if err := cats.Update(ctx, c); err != nil {
		return nil, conflictOnUnique(err, "category slug already exists")
	}
	return s.category(ctx, id)
}

// ToggleCategory flips whether a category is listed publicly.
func (s *Taxonomy) ToggleCategory(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.category(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsListed = !c.IsListed
	if err := store.NewCategoryStore(s.db).Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ReorderCategories applies a new display order atomically.
func (s *Taxonomy) ReorderCategories(ctx context.Context, items []store.ReorderItem) error {
	if len(items) == 0 {
		return invalid("no categories to reorder")
	}
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return store.NewCategoryStore(tx).Reorder(ctx, items)
	})
}

// DeleteCategory removes a category. Its posts keep existing without one.
func (s *Taxonomy) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.category(ctx, id); err != nil {
		return err
	}
	if err := store.NewCategoryStore(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.PinnedKey)
	return nil
}

// DeleteCategories removes several categories and returns how many went.
func (s *Taxonomy) DeleteCategories(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, invalid("no categories selected")
	}
	n, err := store.NewCategoryStore(s.db).DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, cache.PinnedKey)
	return n, nil
}

// CategoryStats summarises the categories.
func (s *Taxonomy) CategoryStats(ctx context.Context) (*models.CategoryStats, error) {
	return store.NewCategoryStore(s.db).Stats(ctx)
}

// Category returns one category with its post count.
func (s *Taxonomy) Category(ctx context.Context, id int64) (*models.Category, error) {
	c, err := store.NewCategoryStore(s.db).Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("category")
	}
	return c, nil
}

// SearchCategories matches q against category names and descriptions.
// q needs at least two characters.
func (s *Taxonomy) SearchCategories(ctx context.Context, q string) ([]models.Category, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minCategoryQuery {
		return nil, invalid("search query must be at least %d characters", minCategoryQuery)
	}
	return store.NewCategoryStore(s.db).Search(ctx, q, categorySearchLimit)
}

// TagStats summarises tag usage. Names first used within RecentTagWindow
// count as recent.
func (s *Taxonomy) TagStats(ctx context.Context) (*models.TagStats, error) {
	return store.NewTagStore(s.db).Stats(ctx, time.Now().Add(-RecentTagWindow), DefaultPopularTags)
}

// Tags returns every tag name with its post count.
func (s *Taxonomy) Tags(ctx context.Context) ([]models.TagCount, error) {
	return store.NewTagStore(s.db).Counts(ctx, 0)
}

// PopularTags returns the limit most used tags. Zero means
// DefaultPopularTags.
func (s *Taxonomy) PopularTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	if limit == 0 {
		limit = DefaultPopularTags
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, invalid("limit must be between 1 and %d", MaxPageSize)
	}
	return store.NewTagStore(s.db).Counts(ctx, limit)
}

// RenameTag renames a tag on every post. The new name must be unused.
func (s *Taxonomy) RenameTag(ctx context.Context, from, to string) (int64, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if to == "" {
		return 0, invalid("new tag name is required")
	}
	tags := store.NewTagStore(s.db)
	if err := s.requireTag(ctx, tags, from); err != nil {
		return 0, err
	}
	if from == to {
		return 0, nil
	}
	taken, err := tags.NameExists(ctx, to)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, fmt.Errorf("%w: tag %q already exists", ErrConflict, to)
	}
	n, err := tags.Rename(ctx, from, to)
	if err != nil {
		return 0, conflictOnUnique(err, "tag already exists")
	}
	slog.Info("tag renamed", "from", from, "to", to, "rows", n)
	s.cache.Invalidate(ctx, cache.PinnedKey)
	return n, nil
}

// DeleteTag removes a tag from every post.
func (s *Taxonomy) DeleteTag(ctx context.Context, name string) (int64, error) {
	tags := store.NewTagStore(s.db)
	if err := s.requireTag(ctx, tags, name); err != nil {
		return 0, err
	}
	n, err := tags.DeleteName(ctx, name)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, cache.PinnedKey)
	return n, nil
}

// TagPosts returns the posts carrying name.
func (s *Taxonomy) TagPosts(ctx context.Context, name string) ([]models.PostView, error) {
	if err := s.requireTag(ctx, store.NewTagStore(s.db), name); err != nil {
		return nil, err
	}
	details, err := store.NewPostStore(s.db).ListByTag(ctx, name)
	if err != nil {
		return nil, err
	}
	return project(ctx, s.db, details)
}

// SetTagStatus sets the status of every post carrying name and returns
// how many changed.
func (s *Taxonomy) SetTagStatus(ctx context.Context, name string, status TagStatus) (int64, error) {
	target, ok := status.postStatus()
	if !ok {
		return 0, invalid("status must be published, draft or archived")
	}
	tags := store.NewTagStore(s.db)
	if err := s.requireTag(ctx, tags, name); err != nil {
		return 0, err
	}
	ids, err := tags.PostIDs(ctx, name)
	if err != nil {
		return 0, err
	}
	n, err := store.NewAttributeStore(s.db).SetStatus(ctx, ids, target)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, cache.PinnedKey)
	return n, nil
}

func (s *Taxonomy) category(ctx context.Context, id int64) (*models.Category, error) {
	c, err := store.NewCategoryStore(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("category")
	}
	return c, nil
}

func (s *Taxonomy) requireTag(ctx context.Context, tags *store.TagStore, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("tag name is required")
	}
	ok, err := tags.NameExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("tag")
	}
	return nil
}

// createCategory fills a unique slug and, when DisplayOrder is negative,
// the next display order, then inserts c.
func createCategory(ctx context.Context, cats *store.CategoryStore, c *models.Category) (*models.Category, error) {
	base := c.Slug
	if base == "" {
		base = slug.Generate(c.Name)
	}
	if base == "" {
		base = "category"
	}
	var err error
	c.Slug, err = slug.Unique(ctx, base, func(ctx context.Context, candidate string) (bool, error) {
		return cats.SlugExists(ctx, candidate, 0)
	})
	if err != nil {
		return nil, err
	}
	if c.DisplayOrder < 0 {
		if c.DisplayOrder, err = cats.NextDisplayOrder(ctx); err != nil {
			return nil, err
		}
	}
	created, err := cats.Create(ctx, c)
	if err != nil {
		return nil, conflictOnUnique(err, "category already exists")
	}
	return created, nil
}
