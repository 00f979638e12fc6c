// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category groups posts. Posts reference at most one category.
type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsListed     bool      `json:"is_listed"`
	UserID       *int64    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Virtual field populated by listing queries.
	PostCount int64 `json:"post_count"`
}

// CategoryStats summarises the category table for the admin dashboard.
type CategoryStats struct {
	Total     int64 `json:"total"`
	Listed    int64 `json:"listed"`
	Unlisted  int64 `json:"unlisted"`
	WithPosts int64 `json:"with_posts"`
}

// TagCount is a tag name with the number of posts carrying it.
type TagCount struct {
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}

// TagStats summarises tag usage for the admin dashboard.
type TagStats struct {
	Unique      int64      `json:"total_tags"`
	Assignments int64      `json:"total_assignments"`
	TaggedPosts int64      `json:"tagged_posts"`
	Recent      int64      `json:"recent_tags"`
	Popular     []TagCount `json:"popular_tags"`
}
