package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"featherpress/internal/auth"
	"featherpress/internal/models"
	"featherpress/internal/store"
)

func TestEngagementRequiresReadablePost(t *testing.T) {
	db := testDB(t)
	owner := testCaller(t, db, models.GroupMember)
	stranger := testCaller(t, db, models.GroupMember)
	posts := NewPosts(db, nil, nil, nil)
	engagement := NewEngagement(db, nil)
	comments := NewComments(db)
	ctx := context.Background()

	draftIn := textInput("Unfinished", "x")
	draftIn.Status = models.PostStatusDraft
	draft := mustCreate(t, posts, draftIn, owner)

	privateIn := textInput("Only me", "x")
	privateIn.Visibility = models.VisibilityPrivate
	private := mustCreate(t, posts, privateIn, owner)

	ops := []struct {
		name string
		run  func(postID int64, caller *auth.Identity) error
	}{
		{"like", func(id int64, c *auth.Identity) error {
			_, err := engagement.ToggleLike(ctx, id, c)
			return err
		}},
		{"like status", func(id int64, c *auth.Identity) error {
			_, err := engagement.LikeStatus(ctx, id, c)
			return err
		}},
		{"view", func(id int64, c *auth.Identity) error {
			_, err := engagement.RecordView(ctx, id, c, "10.0.0.9")
			return err
		}},
		{"share", func(id int64, c *auth.Identity) error {
			_, err := engagement.RecordShare(ctx, id, "mastodon", c)
			return err
		}},
		{"comment", func(id int64, c *auth.Identity) error {
			_, err := comments.Create(ctx, CommentInput{PostID: id, Body: "first"}, c)
			return err
		}},
		{"list comments", func(id int64, c *auth.Identity) error {
			_, err := comments.ForPost(ctx, id, 1, 10, c)
			return err
		}},
	}

	for _, op := range ops {
		for _, post := range []*models.PostView{draft, private} {
			t.Run(op.name+"/"+post.Title, func(t *testing.T) {
				if err := op.run(post.ID, stranger); !errors.Is(err, ErrNotFound) {
					t.Errorf("stranger err = %v, want ErrNotFound", err)
				}
				if err := op.run(post.ID, owner); err != nil {
					t.Errorf("owner: %v", err)
				}
			})
		}
	}
}

func TestLikeStatus(t *testing.T) {
	db := testDB(t)
	author := testCaller(t, db, models.GroupMember)
	reader := testCaller(t, db, models.GroupMember)
	post := mustCreate(t, NewPosts(db, nil, nil, nil), textInput("Likeable", "x"), author)
	engagement := NewEngagement(db, nil)
	ctx := context.Background()

	st, err := engagement.LikeStatus(ctx, post.ID, reader)
	if err != nil {
		t.Fatalf("LikeStatus: %v", err)
	}
	if st.Liked || st.LikeCount != 0 {
		t.Errorf("before like = %+v, want not liked with 0 likes", st)
	}

	if _, err := engagement.ToggleLike(ctx, post.ID, reader); err != nil {
		t.Fatal(err)
	}
	st, err = engagement.LikeStatus(ctx, post.ID, reader)
	if err != nil {
		t.Fatalf("LikeStatus: %v", err)
	}
	if !st.Liked || st.LikeCount != 1 {
		t.Errorf("after like = %+v, want liked with 1 like", st)
	}

	other, err := engagement.LikeStatus(ctx, post.ID, author)
	if err != nil {
		t.Fatal(err)
	}
	if other.Liked || other.LikeCount != 1 {
		t.Errorf("author view = %+v, want not liked with 1 like", other)
	}

	if _, err := engagement.LikeStatus(ctx, post.ID, nil); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("anonymous err = %v, want ErrUnauthorized", err)
	}
}

func TestCommentClientMetadataTruncated(t *testing.T) {
	db := testDB(t)
	author := testCaller(t, db, models.GroupMember)
	post := mustCreate(t, NewPosts(db, nil, nil, nil), textInput("Long agents", "x"), author)
	ctx := context.Background()

	agent := strings.Repeat("é", maxUserAgentLen+100)
	c, err := NewComments(db).Create(ctx, CommentInput{
		PostID:    post.ID,
		Body:      "hello",
		IP:        "2001:db8::7",
		UserAgent: agent,
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := store.NewCommentStore(db).FindByID(ctx, c.ID)
	if err != nil || stored == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.UserAgent == nil || utf8.RuneCountInString(*stored.UserAgent) != maxUserAgentLen {
		t.Errorf("stored user agent has %d runes, want %d", utf8.RuneCountInString(deref(stored.UserAgent)), maxUserAgentLen)
	}
	if stored.UserIP == nil || *stored.UserIP != "2001:db8::7" {
		t.Errorf("stored ip = %v", stored.UserIP)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"", 5, ""},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"toolong", 3, "too"},
		{"Ünïcödé", 4, "Ünïc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestRefreshCountsReplacesCachedCounts(t *testing.T) {
	db := testDB(t)
	author := testCaller(t, db, models.GroupMember)
	reader := testCaller(t, db, models.GroupMember)
	ctx := context.Background()

	in := textInput("Pinned and liked", "x")
	in.Pinned = true
	post := mustCreate(t, NewPosts(db, nil, nil, nil), in, author)
	cached := []models.PostView{*post}

	engagement := NewEngagement(db, nil)
	if _, err := engagement.ToggleLike(ctx, post.ID, reader); err != nil {
		t.Fatal(err)
	}
	if _, err := engagement.RecordView(ctx, post.ID, nil, "10.1.2.3"); err != nil {
		t.Fatal(err)
	}

	if err := refreshCounts(ctx, db, cached); err != nil {
		t.Fatalf("refreshCounts: %v", err)
	}
	if cached[0].Likes != 1 || cached[0].ViewCount != 1 {
		t.Errorf("counts = likes %d views %d, want 1 and 1", cached[0].Likes, cached[0].ViewCount)
	}
	if cached[0].Title != post.Title {
		t.Errorf("title changed to %q", cached[0].Title)
	}
}
