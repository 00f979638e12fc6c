// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"featherpress/internal/auth"
	"featherpress/internal/cache"
	"featherpress/internal/store"
)

// maxPlatformLen bounds the share platform name.
const maxPlatformLen = 50

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ViewResult carries the view count after a view was recorded.
type ViewResult struct {
	ViewCount int64 `json:"view_count"`
}

// ShareResult carries the share count after a share was recorded.
type ShareResult struct {
	ShareCount int64 `json:"share_count"`
}

// Engagement records likes, views and shares and serves their counts.
type Engagement struct {
	db       *sql.DB
	counters *cache.Counters
}

// NewEngagement creates the engagement service. counters may be nil.
func NewEngagement(db *sql.DB, counters *cache.Counters) *Engagement {
	return &Engagement{db: db, counters: counters}
}

// ToggleLike removes the caller's like when present and adds it
// otherwise. A concurrent insert that loses the race counts as liked.
func (e *Engagement) ToggleLike(ctx context.Context, postID int64, caller *auth.Identity) (*LikeResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := e.requirePost(ctx, postID, caller); err != nil {
		return nil, err
	}

	s := store.NewEngagementStore(e.db)
	removed, err := s.Unlike(ctx, postID, caller.UserID)
	if err != nil {
		return nil, err
	}
	liked := !removed
	if liked {
		if err := s.Like(ctx, postID, caller.UserID); err != nil && !store.IsUniqueViolation(err) {
			return nil, err
		}
	}
	e.counters.Invalidate(ctx, cache.CountLikes, postID)

	n, err := e.counters.Get(ctx, cache.CountLikes, postID, func(ctx context.Context) (int64, error) {
		return s.CountLikes(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: n}, nil
}

// LikeStatus reports whether the caller likes the post and its like count.
func (e *Engagement) LikeStatus(ctx context.Context, postID int64, caller *auth.Identity) (*LikeResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := e.requirePost(ctx, postID, caller); err != nil {
		return nil, err
	}

	s := store.NewEngagementStore(e.db)
	liked, err := s.Liked(ctx, postID, caller.UserID)
	if err != nil {
		return nil, err
	}
	n, err := e.counters.Get(ctx, cache.CountLikes, postID, func(ctx context.Context) (int64, error) {
		return s.CountLikes(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: n}, nil
}

// RecordView counts a view once per user, or once per IP for anonymous
// callers.
func (e *Engagement) RecordView(ctx context.Context, postID int64, caller *auth.Identity, ip string) (*ViewResult, error) {
	if err := e.requirePost(ctx, postID, caller); err != nil {
		return nil, err
	}
	var userID *int64
	if caller != nil {
		userID = &caller.UserID
	} else if ip == "" {
		return nil, invalid("cannot record an anonymous view without a client address")
	}

	s := store.NewEngagementStore(e.db)
	if err := s.RecordView(ctx, postID, userID, ip); err != nil {
		return nil, err
	}
	e.counters.Invalidate(ctx, cache.CountViews, postID)

	n, err := e.counters.Get(ctx, cache.CountViews, postID, func(ctx context.Context) (int64, error) {
		return s.CountViews(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	return &ViewResult{ViewCount: n}, nil
}

// RecordShare stores one share event.
func (e *Engagement) RecordShare(ctx context.Context, postID int64, platform string, caller *auth.Identity) (*ShareResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	platform = strings.TrimSpace(platform)
	if platform == "" || utf8.RuneCountInString(platform) > maxPlatformLen {
		return nil, invalid("platform must be 1 to %d characters", maxPlatformLen)
	}
	if err := e.requirePost(ctx, postID, caller); err != nil {
		return nil, err
	}

	s := store.NewEngagementStore(e.db)
	if err := s.RecordShare(ctx, postID, caller.UserID, platform); err != nil {
		return nil, err
	}
	e.counters.Invalidate(ctx, cache.CountShares, postID)

	n, err := e.counters.Get(ctx, cache.CountShares, postID, func(ctx context.Context) (int64, error) {
		return s.CountShares(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	return &ShareResult{ShareCount: n}, nil
}

func (e *Engagement) requirePost(ctx context.Context, postID int64, caller *auth.Identity) error {
	_, err := readablePost(ctx, e.db, postID, caller)
	return err
}
