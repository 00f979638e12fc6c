// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Well-known group ids created by the initial migration.
const (
	GroupAdmin  int64 = 1
	GroupMember int64 = 2
	GroupFriend int64 = 3
	GroupBanned int64 = 4
	GroupGuest  int64 = 5
)

// User is an account. Its role is derived from GroupID alone.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FullName       *string   `json:"full_name,omitempty"`
	Website        *string   `json:"website,omitempty"`
	Image          *string   `json:"image,omitempty"`
	GroupID        int64     `json:"group_id"`
	Approved       bool      `json:"approved"`
	IsActive       bool      `json:"is_active"`
	TOTPSecret     *string   `json:"-"`
	TOTPEnabled    bool      `json:"totp_enabled"`
	JoinedAt       time.Time `json:"joined_at"`
}

// IsSeededGroup reports whether id is one of the groups created by the
// initial migration. Those groups cannot be deleted.
func IsSeededGroup(id int64) bool {
	return id >= GroupAdmin && id <= GroupGuest
}

// Group owns a set of permission names.
type Group struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions"`

	// Virtual field populated by listing queries.
	UserCount int64 `json:"user_count"`
}

// UserDeletion reports what was removed alongside a deleted user.
type UserDeletion struct {
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
	Tags     int64 `json:"tags"`
	Uploads  int64 `json:"uploads"`
	Likes    int64 `json:"likes"`
	Shares   int64 `json:"shares"`
	Views    int64 `json:"views"`
	Files    int64 `json:"files"`
}
