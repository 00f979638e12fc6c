// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"featherpress/internal/auth"
	"featherpress/internal/cache"
	"featherpress/internal/cursor"
	"featherpress/internal/models"
	"featherpress/internal/store"
)

// Feed page size limits.
const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

// FeedPage is one page of the public feed.
type FeedPage struct {
	Posts      []models.PostView `json:"posts"`
	NextCursor string            `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
}

// Feed serves the read side of posts.
type Feed struct {
	db    *sql.DB
	cache *cache.ResponseCache
}

// NewFeed creates the feed service. rc may be nil.
func NewFeed(db *sql.DB, rc *cache.ResponseCache) *Feed {
	return &Feed{db: db, cache: rc}
}

// Page returns published posts after the position encoded in rawCursor.
// A zero limit means DefaultFeedLimit.
func (f *Feed) Page(ctx context.Context, limit int, rawCursor, search string) (*FeedPage, error) {
	if limit == 0 {
		limit = DefaultFeedLimit
	}
	if limit < 1 || limit > MaxFeedLimit {
		return nil, invalid("limit must be between 1 and %d", MaxFeedLimit)
	}
	after, err := cursor.Decode(rawCursor)
	if err != nil {
		if errors.Is(err, cursor.ErrMalformed) {
			return nil, invalid("malformed cursor")
		}
		return nil, err
	}

	details, err := store.NewPostStore(f.db).Feed(ctx, store.FeedQuery{Limit: limit, After: after, Search: search})
	if err != nil {
		return nil, err
	}
	views, err := project(ctx, f.db, details)
	if err != nil {
		return nil, err
	}

	page := &FeedPage{Posts: views, HasMore: len(details) == limit}
	if page.HasMore {
		last := details[len(details)-1]
		page.NextCursor = cursor.Encode(cursor.Position{CreatedAt: last.Attribute.CreatedAt, ID: last.Post.ID})
	}
	return page, nil
}

// Pinned returns every pinned published post. The list is served from
// the response cache when present.
func (f *Feed) Pinned(ctx context.Context) ([]models.PostView, error) {
	var views []models.PostView
	if f.cache.Get(ctx, cache.PinnedKey, &views) {
		if err := refreshCounts(ctx, f.db, views); err != nil {
			return nil, err
		}
		return views, nil
	}

	details, err := store.NewPostStore(f.db).Pinned(ctx)
	if err != nil {
		return nil, err
	}
	views, err = project(ctx, f.db, details)
	if err != nil {
		return nil, err
	}
	f.cache.Set(ctx, cache.PinnedKey, views)
	return views, nil
}

// refreshCounts replaces the engagement counts of cached views with
// current ones. The cached list is only invalidated by post writes.
func refreshCounts(ctx context.Context, db store.DBTX, views []models.PostView) error {
	ids := make([]int64, len(views))
	for i := range views {
		ids[i] = views[i].ID
	}
	counts, err := store.NewPostStore(db).Counts(ctx, ids)
	if err != nil {
		return err
	}
	for i := range views {
		c := counts[views[i].ID]
		views[i].Likes, views[i].Shares = c.Likes, c.Shares
		views[i].ViewCount, views[i].Comments = c.Views, c.Comments
	}
	return nil
}

// Get returns one post. Posts the caller may not read are reported as
// missing.
func (f *Feed) Get(ctx context.Context, postID int64, caller *auth.Identity) (*models.PostView, error) {
	d, err := readablePost(ctx, f.db, postID, caller)
	if err != nil {
		return nil, err
	}
	views, err := project(ctx, f.db, []models.PostDetail{*d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Mine returns every post of the caller, newest first.
func (f *Feed) Mine(ctx context.Context, caller *auth.Identity) ([]models.PostView, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	details, err := store.NewPostStore(f.db).ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return project(ctx, f.db, details)
}

// RecentPostWindow is how far back Stats looks for recent posts.
const RecentPostWindow = 30 * 24 * time.Hour

// AdminPostQuery filters the admin post listing. Empty fields match all.
type AdminPostQuery struct {
	Status string
	Type   string
	UserID int64
	Search string
	Page   int
	Limit  int
}

// AdminPostList is one page of the admin post listing.
type AdminPostList struct {
	Posts []models.PostView `json:"posts"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Pages int               `json:"pages"`
}

// AdminList returns posts of every status and visibility, newest first.
func (f *Feed) AdminList(ctx context.Context, q AdminPostQuery) (*AdminPostList, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	status, typ := models.PostStatus(q.Status), models.PostType(q.Type)
	if status != "" && !status.Valid() {
		return nil, invalid("unknown status %q", q.Status)
	}
	if typ != "" && !typ.Valid() {
		return nil, invalid("unknown post type %q", q.Type)
	}

	details, total, err := store.NewPostStore(f.db).AdminList(ctx, store.AdminQuery{
		Status: status,
		Type:   typ,
		UserID: q.UserID,
		Search: q.Search,
		Page:   store.Page{Page: page, Limit: limit},
	})
	if err != nil {
		return nil, err
	}
	views, err := project(ctx, f.db, details)
	if err != nil {
		return nil, err
	}
	return &AdminPostList{Posts: views, Total: total, Page: page, Limit: limit, Pages: pages(total, limit)}, nil
}

// AdminGet returns any post regardless of status or visibility.
func (f *Feed) AdminGet(ctx context.Context, postID int64) (*models.PostView, error) {
	return f.view(ctx, f.db, postID)
}

// Stats counts posts by status and type, plus those created within
// RecentPostWindow.
func (f *Feed) Stats(ctx context.Context) (*models.PostStats, error) {
	return store.NewPostStore(f.db).Stats(ctx, time.Now().Add(-RecentPostWindow))
}

// view loads and projects one post without visibility checks.
func (f *Feed) view(ctx context.Context, db store.DBTX, postID int64) (*models.PostView, error) {
	d, err := store.NewPostStore(db).Detail(ctx, postID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, notFound("post")
	}
	views, err := project(ctx, db, []models.PostDetail{*d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// canRead applies the status and visibility rules. The owner and admins
// always read a post.
func canRead(d *models.PostDetail, caller *auth.Identity) bool {
	if canModify(caller, d.Post.UserID) {
		return true
	}
	if !d.Attribute.IsPublished() {
		return false
	}
	switch d.Attribute.Visibility {
	case models.VisibilityPrivate:
		return false
	case models.VisibilityGroup:
		if caller == nil {
			return false
		}
		group, ok := auth.GroupForRole(string(caller.Role))
		return ok && slices.Contains(d.Attribute.VisibilityGroups, group)
	}
	return true
}

// readablePost loads a post the caller may read. Missing and unreadable
// posts both report ErrNotFound.
func readablePost(ctx context.Context, db store.DBTX, postID int64, caller *auth.Identity) (*models.PostDetail, error) {
	if postID <= 0 {
		return nil, invalid("post_id is required")
	}
	d, err := store.NewPostStore(db).Detail(ctx, postID)
	if err != nil {
		return nil, err
	}
	if d == nil || !canRead(d, caller) {
		return nil, notFound("post")
	}
	return d, nil
}

// project hydrates details and converts them to their API shape.
func project(ctx context.Context, db store.DBTX, details []models.PostDetail) ([]models.PostView, error) {
	if err := store.NewPostStore(db).Hydrate(ctx, details); err != nil {
		return nil, err
	}
	views := make([]models.PostView, len(details))
	for i := range details {
		views[i] = models.Project(details[i])
	}
	return views, nil
}
