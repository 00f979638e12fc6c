// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import "sort"

// UltimatePermissions is the closed vocabulary of permission names a group
// may hold.
var UltimatePermissions = []string{
	"add_comments",
	"add_comments_private",
	"add_drafts",
	"add_groups",
	"add_pages",
	"add_posts",
	"add_uploads",
	"add_users",
	"change_settings",
	"use_html_comments",
	"delete_comments",
	"delete_drafts",
	"delete_groups",
	"delete_own_comments",
	"delete_own_drafts",
	"delete_own_posts",
	"delete_pages",
	"delete_webmentions",
	"delete_posts",
	"delete_uploads",
	"delete_users",
	"edit_comments",
	"edit_drafts",
	"edit_groups",
	"edit_own_comments",
	"edit_own_drafts",
	"edit_own_posts",
	"edit_pages",
	"edit_webmentions",
	"edit_posts",
	"edit_uploads",
	"edit_users",
	"export_content",
	"import_content",
	"like_posts",
	"manage_categories",
	"toggle_extensions",
	"unlike_posts",
	"view_drafts",
	"view_own_drafts",
	"view_pages",
	"view_private_posts",
	"view_scheduled_posts",
	"view_site",
	"view_uploads",
}

// MemberPermissions is the default permission set of the Member group.
var MemberPermissions = []string{
	"add_comments",
	"add_drafts",
	"add_posts",
	"add_uploads",
	"delete_own_comments",
	"delete_own_drafts",
	"delete_own_posts",
	"edit_own_comments",
	"edit_own_drafts",
	"edit_own_posts",
	"like_posts",
	"unlike_posts",
	"view_own_drafts",
	"view_site",
}

// FriendPermissions extends the member set with private-post access.
var FriendPermissions = append(append([]string{}, MemberPermissions...),
	"add_comments_private",
	"view_private_posts",
)

// GuestPermissions is the default permission set of the Guest group.
var GuestPermissions = []string{"view_site"}

var known = func() map[string]bool {
	m := make(map[string]bool, len(UltimatePermissions))
	for _, p := range UltimatePermissions {
		m[p] = true
	}
	return m
}()

// IsPermission reports whether name is in the ultimate permission list.
func IsPermission(name string) bool {
	return known[name]
}

// UnknownPermissions returns the sorted names not in the ultimate list.
func UnknownPermissions(names []string) []string {
	var bad []string
	for _, n := range names {
		if !known[n] {
			bad = append(bad, n)
		}
	}
	sort.Strings(bad)
	return bad
}

// DefaultPermissions returns the seeded permission set for a group id.
func DefaultPermissions(groupID int64) []string {
	switch RoleForGroup(groupID) {
	case RoleAdmin:
		return append([]string{}, UltimatePermissions...)
	case RoleEditor:
		return append([]string{}, MemberPermissions...)
	case RoleContributor:
		return append([]string{}, FriendPermissions...)
	case RoleBanned:
		return []string{}
	default:
		return append([]string{}, GuestPermissions...)
	}
}
