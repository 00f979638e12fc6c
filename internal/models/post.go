// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import "time"

// PostType is the discriminator that selects which content fields of a
// post are meaningful.
type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypePhoto PostType = "photo"
	PostTypeVideo PostType = "video"
	PostTypeAudio PostType = "audio"
	PostTypeQuote PostType = "quote"
	PostTypeLink  PostType = "link"
	PostTypeFile  PostType = "file"
)

// PostTypes lists every recognised post type.
var PostTypes = []PostType{
	PostTypeText, PostTypePhoto, PostTypeVideo, PostTypeAudio,
	PostTypeQuote, PostTypeLink, PostTypeFile,
}

// Valid reports whether t is one of the recognised post types.
func (t PostType) Valid() bool {
	for _, pt := range PostTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// PostStatus is the lifecycle state stored on a post's attribute record.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusPrivate   PostStatus = "private"
	PostStatusScheduled PostStatus = "scheduled"
)

// Valid reports whether s is a known post status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusPrivate, PostStatusScheduled:
		return true
	}
	return false
}

// PostStats summarises posts for the admin dashboard.
type PostStats struct {
	Total    int64                `json:"totalPosts"`
	ByStatus map[PostStatus]int64 `json:"postsByStatus"`
	ByType   map[PostType]int64   `json:"postsByType"`
	Recent   int64                `json:"recentPosts"`
}

// Visibility controls who may read a published post.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityGroup   Visibility = "group"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityGroup:
		return true
	}
	return false
}

// DefaultLicense is applied when a post is created without a license.
const DefaultLicense = "All Rights Reserved"

// Post is a row of the posts table. The nullable scalar columns form a
// union; only the subset owned by Type's content variant is ever set.
type Post struct {
	ID          int64    `json:"id"`
	Type        PostType `json:"type"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	UserID      int64    `json:"user_id"`
	CategoryID  *int64   `json:"category_id,omitempty"`
	Body        *string  `json:"body,omitempty"`
	Caption     *string  `json:"caption,omitempty"`
	Quote       *string  `json:"quote,omitempty"`
	QuoteSource *string  `json:"quote_source,omitempty"`
	LinkURL     *string  `json:"link_url,omitempty"`
	Thumbnail   *string  `json:"thumbnail,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// ClearContent nulls every type-specific column. Used when a post changes
// type so that no field of the previous variant survives.
func (p *Post) ClearContent() {
	p.Body = nil
	p.Caption = nil
	p.Quote = nil
	p.QuoteSource = nil
	p.LinkURL = nil
	p.Thumbnail = nil
	p.Description = nil
}

// PostAttribute is the one-to-one lifecycle record of a post. Its
// timestamps are the canonical ordering keys for posts.
type PostAttribute struct {
	ID               int64      `json:"id"`
	PostID           int64      `json:"post_id"`
	Status           PostStatus `json:"status"`
	Pinned           bool       `json:"pinned"`
	Slug             string     `json:"slug"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	Visibility       Visibility `json:"visibility"`
	VisibilityGroups []int64    `json:"visibility_groups"`
	AllowComments    bool       `json:"allow_comments"`
	OriginalWork     *bool      `json:"original_work,omitempty"`
	RightsHolder     *string    `json:"rights_holder,omitempty"`
	License          string     `json:"license"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsPublished returns true if the attribute status is "published".
func (a *PostAttribute) IsPublished() bool {
	return a.Status == PostStatusPublished
}
