// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth resolves caller identity: group-to-role mapping, the fixed
// permission vocabulary, bearer tokens and TOTP second factors.
package auth

import (
	"strings"

	"featherpress/internal/models"
)

// Role is the named role carried in tokens and checked by middleware.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleEditor      Role = "editor"
	RoleContributor Role = "contributor"
	RoleBanned      Role = "banned"
	RoleGuest       Role = "guest"
)

// RoleForGroup is the single mapping from a stored group id to a role.
// Unknown groups resolve to guest.
func RoleForGroup(groupID int64) Role {
	switch groupID {
	case models.GroupAdmin:
		return RoleAdmin
	case models.GroupMember:
		return RoleEditor
	case models.GroupFriend:
		return RoleContributor
	case models.GroupBanned:
		return RoleBanned
	default:
		return RoleGuest
	}
}

// GroupForRole maps a role name, or one of its aliases, back to a group id.
func GroupForRole(name string) (int64, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return models.GroupAdmin, true
	case "editor", "member":
		return models.GroupMember, true
	case "contributor", "author", "friend":
		return models.GroupFriend, true
	case "banned":
		return models.GroupBanned, true
	case "guest":
		return models.GroupGuest, true
	}
	return 0, false
}

// CanManage returns true for roles allowed on the admin surface.
func (r Role) CanManage() bool {
	return r == RoleAdmin
}

// CanAuthor returns true for roles allowed to create posts.
func (r Role) CanAuthor() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleContributor:
		return true
	}
	return false
}

// Banned returns true if the role may not act at all.
func (r Role) Banned() bool {
	return r == RoleBanned
}

// CanModify reports whether a caller may change a resource owned by ownerID.
func CanModify(role Role, callerID, ownerID int64) bool {
	return role.CanManage() || callerID == ownerID
}
