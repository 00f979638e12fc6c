// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"featherpress/internal/models"
)

func TestRoleForGroup(t *testing.T) {
	tests := []struct {
		group int64
		want  Role
	}{
		{models.GroupAdmin, RoleAdmin},
		{models.GroupMember, RoleEditor},
		{models.GroupFriend, RoleContributor},
		{models.GroupBanned, RoleBanned},
		{models.GroupGuest, RoleGuest},
		{0, RoleGuest},
		{99, RoleGuest},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			if got := RoleForGroup(tt.group); got != tt.want {
				t.Errorf("RoleForGroup(%d) = %q, want %q", tt.group, got, tt.want)
			}
		})
	}
}

// TestGroupForRoleInverse verifies that every role maps back to the group
// it came from.
func TestGroupForRoleInverse(t *testing.T) {
	for _, g := range []int64{1, 2, 3, 4, 5} {
		role := RoleForGroup(g)
		back, ok := GroupForRole(string(role))
		if !ok || back != g {
			t.Errorf("GroupForRole(%q) = %d, %v; want %d", role, back, ok, g)
		}
	}

	aliases := map[string]int64{"member": 2, "author": 3, "friend": 3, " Admin ": 1}
	for name, want := range aliases {
		if got, ok := GroupForRole(name); !ok || got != want {
			t.Errorf("GroupForRole(%q) = %d, %v; want %d", name, got, ok, want)
		}
	}

	if _, ok := GroupForRole("superuser"); ok {
		t.Error("GroupForRole accepted unknown role")
	}
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role                    Role
		manage, author, blocked bool
	}{
		{RoleAdmin, true, true, false},
		{RoleEditor, false, true, false},
		{RoleContributor, false, true, false},
		{RoleBanned, false, false, true},
		{RoleGuest, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if tt.role.CanManage() != tt.manage || tt.role.CanAuthor() != tt.author || tt.role.Banned() != tt.blocked {
				t.Errorf("%q: manage=%v author=%v banned=%v", tt.role,
					tt.role.CanManage(), tt.role.CanAuthor(), tt.role.Banned())
			}
		})
	}
}

func TestCanModify(t *testing.T) {
	if !CanModify(RoleEditor, 5, 5) {
		t.Error("owner must be allowed")
	}
	if CanModify(RoleEditor, 5, 6) {
		t.Error("non-owner editor must be refused")
	}
	if !CanModify(RoleAdmin, 1, 6) {
		t.Error("admin must be allowed")
	}
}

func TestPermissionSets(t *testing.T) {
	if len(UltimatePermissions) != 45 {
		t.Errorf("len(UltimatePermissions) = %d, want 45", len(UltimatePermissions))
	}
	for _, set := range [][]string{MemberPermissions, FriendPermissions, GuestPermissions} {
		if bad := UnknownPermissions(set); len(bad) > 0 {
			t.Errorf("default set holds unknown permissions %v", bad)
		}
	}
	if len(FriendPermissions) != len(MemberPermissions)+2 {
		t.Errorf("friend set = %d entries, want member+2", len(FriendPermissions))
	}
	if got := DefaultPermissions(models.GroupBanned); len(got) != 0 {
		t.Errorf("banned permissions = %v, want none", got)
	}
	if got := UnknownPermissions([]string{"view_site", "fly", "delete_world"}); len(got) != 2 || got[0] != "delete_world" {
		t.Errorf("UnknownPermissions = %v", got)
	}
}

func TestIssuerRoundTrip(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	token, err := iss.Issue(&models.User{ID: 42, Email: "ana@example.com", GroupID: models.GroupAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != 42 || id.Email != "ana@example.com" || id.Role != RoleAdmin {
		t.Errorf("identity = %+v", id)
	}
}

func TestIssuerRejects(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	token, err := iss.Issue(&models.User{ID: 1, Email: "a@b.c", GroupID: models.GroupGuest})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		if _, err := NewIssuer("other", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		late := NewIssuer("test-secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := late.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := iss.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})
}

func TestTOTPEnrollment(t *testing.T) {
	enr, err := NewTOTP("ana@example.com")
	if err != nil {
		t.Fatalf("NewTOTP: %v", err)
	}
	if enr.Secret == "" || enr.QR == "" {
		t.Fatalf("enrollment missing fields: %+v", enr)
	}

	code, err := totp.GenerateCode(enr.Secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if !ValidateTOTP(code, enr.Secret) {
		t.Error("ValidateTOTP rejected a fresh code")
	}
	if ValidateTOTP("not-a-code", enr.Secret) {
		t.Error("ValidateTOTP accepted a malformed code")
	}
}
