// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentSpam     CommentStatus = "spam"
	CommentDenied   CommentStatus = "denied"
)

// Valid reports whether s is a known comment status.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentPending, CommentApproved, CommentSpam, CommentDenied:
		return true
	}
	return false
}

// SpamRejected is the spam-view label for CommentDenied.
const SpamRejected = "rejected"

// SpamLabel returns the status as shown by the spam view.
func (s CommentStatus) SpamLabel() string {
	if s == CommentDenied {
		return SpamRejected
	}
	return string(s)
}

// StatusFromSpamLabel maps a spam-view label back to a stored status.
// Only spam, approved and rejected are accepted.
func StatusFromSpamLabel(label string) (CommentStatus, bool) {
	switch label {
	case string(CommentSpam):
		return CommentSpam, true
	case string(CommentApproved):
		return CommentApproved, true
	case SpamRejected:
		return CommentDenied, true
	}
	return "", false
}

// Comment is a reader comment on a post. UserID is nil for anonymous comments.
type Comment struct {
	ID        int64         `json:"id"`
	PostID    int64         `json:"post_id"`
	UserID    *int64        `json:"user_id,omitempty"`
	ParentID  *int64        `json:"parent_id,omitempty"`
	Body      string        `json:"body"`
	Status    CommentStatus `json:"status"`
	UserIP    *string       `json:"user_ip,omitempty"`
	UserAgent *string       `json:"user_agent,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Joined for listings; empty for anonymous authors.
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	PostTitle string  `json:"post_title,omitempty"`
}

// CommentStats counts comments per moderation status.
type CommentStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Spam     int64 `json:"spam"`
	Denied   int64 `json:"denied"`
}

// SpamStats is CommentStats in the spam-view vocabulary.
type SpamStats struct {
	Total    int64 `json:"total"`
	Spam     int64 `json:"spam"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// SpamView converts the counts to the spam-view vocabulary.
func (s CommentStats) SpamView() SpamStats {
	return SpamStats{
		Total:    s.Total,
		Spam:     s.Spam,
		Approved: s.Approved,
		Rejected: s.Denied,
	}
}
