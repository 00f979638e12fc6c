// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"featherpress/internal/models"
)

func newComment(t *testing.T, s *CommentStore, postID int64, userID *int64, body string) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, UserID: userID, Body: body, Status: models.CommentPending}
	if err := s.Create(context.Background(), c); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func TestCommentStoreBatchAndTotals(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, models.GroupMember)
	d := testPost(t, db, u.ID, "Commented")

	s := NewCommentStore(db)
	var ids []int64
	for _, body := range []string{"one", "two", "three"} {
		ids = append(ids, newComment(t, s, d.Post.ID, &u.ID, body).ID)
	}
	newComment(t, s, d.Post.ID, nil, "anonymous")

	n, err := s.BatchSetStatus(ctx, ids, models.CommentApproved)
	if err != nil {
		t.Fatalf("BatchSetStatus: %v", err)
	}
	if n != 3 {
		t.Errorf("affected: got %d, want 3", n)
	}

	approved, total, err := s.ListApproved(ctx, d.Post.ID, Page{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if total != 3 || len(approved) != 2 {
		t.Errorf("approved: got %d rows of %d, want 2 of 3", len(approved), total)
	}
	if approved[0].Body != "one" {
		t.Errorf("oldest first: got %q", approved[0].Body)
	}

	totals, err := s.TotalsByPost(ctx, []int64{d.Post.ID})
	if err != nil {
		t.Fatalf("TotalsByPost: %v", err)
	}
	if totals[d.Post.ID] != 4 {
		t.Errorf("total comments: got %d, want 4", totals[d.Post.ID])
	}

	deleted, err := s.BatchDelete(ctx, ids[:2])
	if err != nil {
		t.Fatalf("BatchDelete: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted: got %d, want 2", deleted)
	}
}

func TestCommentStoreListFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, models.GroupMember)
	d := testPost(t, db, u.ID, "Filtered")

	s := NewCommentStore(db)
	spam := newComment(t, s, d.Post.ID, &u.ID, "buy cheap watches")
	newComment(t, s, d.Post.ID, &u.ID, "nice post")
	if _, err := s.SetStatus(ctx, spam.ID, models.CommentSpam); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	tests := []struct {
		name   string
		filter CommentFilter
		want   int64
	}{
		{"by post", CommentFilter{PostID: d.Post.ID}, 2},
		{"by status", CommentFilter{PostID: d.Post.ID, Statuses: []models.CommentStatus{models.CommentSpam}}, 1},
		{"by search", CommentFilter{PostID: d.Post.ID, Search: "WATCHES"}, 1},
		{"by author", CommentFilter{PostID: d.Post.ID, Author: u.Username}, 2},
		{"no match", CommentFilter{PostID: d.Post.ID, Author: "nobody-by-this-name"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Page = Page{Page: 1, Limit: 10}
			items, total, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if total != tt.want || int64(len(items)) != tt.want {
				t.Errorf("got %d rows, total %d, want %d", len(items), total, tt.want)
			}
		})
	}
}

func TestCommentStoreUpdateBodyResetsStatus(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, models.GroupMember)
	d := testPost(t, db, u.ID, "Edited")

	s := NewCommentStore(db)
	c := newComment(t, s, d.Post.ID, &u.ID, "first")
	if _, err := s.SetStatus(ctx, c.ID, models.CommentApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := s.UpdateBody(ctx, c.ID, "second"); err != nil {
		t.Fatalf("UpdateBody: %v", err)
	}

	got, err := s.FindByID(ctx, c.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Body != "second" || got.Status != models.CommentPending {
		t.Errorf("got body=%q status=%q", got.Body, got.Status)
	}
	if got.PostTitle != "Edited" {
		t.Errorf("post title: got %q", got.PostTitle)
	}
}
