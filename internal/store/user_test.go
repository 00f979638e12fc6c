// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"strings"
	"testing"

	"featherpress/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db, models.GroupMember)

	if u.ID == 0 {
		t.Error("expected non-zero id")
	}
	if u.TOTPEnabled {
		t.Error("expected totp_enabled=false for new user")
	}
	if u.HashedPassword == "" || u.HashedPassword == "testpass123" {
		t.Error("password must be stored hashed")
	}
	if u.JoinedAt.IsZero() {
		t.Error("expected joined_at to be set")
	}
}

func TestUserStoreFindByLogin(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, models.GroupMember)
	s := NewUserStore(db)

	tests := []struct {
		name  string
		login string
		found bool
	}{
		{"email", u.Email, true},
		{"email upper case", strings.ToUpper(u.Email), true},
		{"username", u.Username, true},
		{"username padded", "  " + u.Username + " ", true},
		{"unknown", "nobody-" + u.Username, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindByLogin(ctx, tt.login)
			if err != nil {
				t.Fatalf("FindByLogin: %v", err)
			}
			if (got != nil) != tt.found {
				t.Fatalf("found: got %v, want %v", got != nil, tt.found)
			}
			if got != nil && got.ID != u.ID {
				t.Errorf("id: got %d, want %d", got.ID, u.ID)
			}
		})
	}
}

func TestUserStoreCheckPassword(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, models.GroupMember)
	s := NewUserStore(db)

	if !s.CheckPassword(u, "testpass123") {
		t.Error("expected correct password to match")
	}
	if s.CheckPassword(u, "wrong") {
		t.Error("expected wrong password to fail")
	}

	if err := s.SetPassword(ctx, u.ID, "newpass456"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	reloaded, err := s.FindByID(ctx, u.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !s.CheckPassword(reloaded, "newpass456") {
		t.Error("expected new password to match")
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, models.GroupMember)
	s := NewUserStore(db)

	if err := s.SetTOTPSecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	got, _ := s.FindByID(ctx, u.ID)
	if got.TOTPSecret == nil || *got.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Errorf("secret: got %v", got.TOTPSecret)
	}
	if got.TOTPEnabled {
		t.Error("2FA must stay disabled until verified")
	}

	if err := s.EnableTOTP(ctx, u.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}
	got, _ = s.FindByID(ctx, u.ID)
	if !got.TOTPEnabled {
		t.Error("expected totp_enabled=true")
	}
}

func TestUserStoreListAndCount(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, models.GroupFriend)
	s := NewUserStore(db)

	items, total, err := s.List(ctx, UserFilter{Search: u.Username, Page: Page{Page: 1, Limit: 10}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != u.ID {
		t.Errorf("got %d items of %d", len(items), total)
	}

	n, err := s.CountInGroup(ctx, models.GroupFriend)
	if err != nil {
		t.Fatalf("CountInGroup: %v", err)
	}
	if n < 1 {
		t.Errorf("friends: got %d, want >= 1", n)
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, models.GroupMember)

	dup := &models.User{Username: u.Username + "x", Email: u.Email, GroupID: models.GroupMember}
	err := NewUserStore(db).Create(ctx, dup, "whatever1")
	if dup.ID != 0 {
		t.Cleanup(func() { cleanUser(t, db, dup.ID) })
	}
	if !IsUniqueViolation(err) {
		t.Errorf("got %v, want unique violation", err)
	}
}

func TestGroupStoreLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewGroupStore(db)

	g := &models.Group{Name: "Reviewers " + t.Name(), Permissions: []string{"view_site", "add_comment"}}
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM groups WHERE id = $1", g.ID) })

	g.Permissions = append(g.Permissions, "edit_own_comment")
	if err := s.Update(ctx, g); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.FindByID(ctx, g.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Permissions) != 3 {
		t.Errorf("permissions: got %v", got.Permissions)
	}

	if err := s.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = s.FindByID(ctx, g.ID)
	if got != nil {
		t.Error("expected group to be gone")
	}
}
