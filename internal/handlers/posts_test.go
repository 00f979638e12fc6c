// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"

	"featherpress/internal/middleware"
	"featherpress/internal/models"
	"featherpress/internal/service"
	"featherpress/internal/store"
)

// TestCreatePost_JSON verifies a JSON create returns 201 with the post view.
func TestCreatePost_JSON(t *testing.T) {
	env := newTestEnv(t)
	author := testUser(t, env.DB, models.GroupMember)

	title := "Handler post " + uuid.NewString()[:6]
	body := `{"type":"text","title":"` + title + `","content":{"body":"hello"},"status":"published","tags":["go"]}`
	rec := httptest.NewRecorder()
	env.Posts.Create(rec, jsonRequest(http.MethodPost, "/posts", body, author))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view models.PostView
	decodeBody(t, rec, &view)
	if view.Title != title {
		t.Errorf("title = %q, want %q", view.Title, title)
	}
	if view.Author.ID != author.UserID {
		t.Errorf("author = %d, want %d", view.Author.ID, author.UserID)
	}
	if len(view.Tags) != 1 || view.Tags[0] != "go" {
		t.Errorf("tags = %v", view.Tags)
	}
}

// TestCreatePost_Anonymous verifies that creating without an identity is 401.
func TestCreatePost_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Posts.Create(rec, jsonRequest(http.MethodPost, "/posts",
		`{"type":"text","title":"Anon","content":{"body":"x"}}`, nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestCreatePost_Multipart verifies that file parts are stored as uploads
// attached to the new post.
func TestCreatePost_Multipart(t *testing.T) {
	env := newTestEnv(t)
	author := testUser(t, env.DB, models.GroupMember)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	data := `{"type":"audio","title":"Track ` + uuid.NewString()[:6] + `","content":{},"status":"published"}`
	if err := mw.WriteField("data", data); err != nil {
		t.Fatal(err)
	}
	part, err := mw.CreateFormFile(service.FieldAudioFile, "track.mp3")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("ID3 fake audio"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(middleware.WithIdentity(req.Context(), author))
	rec := httptest.NewRecorder()
	env.Posts.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view models.PostView
	decodeBody(t, rec, &view)

	uploads, err := store.NewUploadStore(env.DB).ListByPost(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if len(uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(uploads))
	}
	if uploads[0].Kind != models.UploadAudio {
		t.Errorf("kind = %q, want audio", uploads[0].Kind)
	}
}

// TestCreatePost_MultipartWithoutData verifies the data part is required.
func TestCreatePost_MultipartWithoutData(t *testing.T) {
	env := newTestEnv(t)
	author := testUser(t, env.DB, models.GroupMember)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "no data")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(middleware.WithIdentity(req.Context(), author))
	rec := httptest.NewRecorder()
	env.Posts.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestPostLifecycle creates, likes, reads and deletes a post through the
// handlers.
func TestPostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	author := testUser(t, env.DB, models.GroupMember)
	reader := testUser(t, env.DB, models.GroupGuest)

	rec := httptest.NewRecorder()
	env.Posts.Create(rec, jsonRequest(http.MethodPost, "/posts",
		`{"type":"quote","title":"Q `+uuid.NewString()[:6]+`","content":{"quote":"be brief"},"status":"published"}`, author))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created models.PostView
	decodeBody(t, rec, &created)
	id := strconv.FormatInt(created.ID, 10)

	rec = httptest.NewRecorder()
	env.Posts.Like(rec, jsonRequest(http.MethodPost, "/posts/like", `{"post_id":`+id+`}`, reader))
	if rec.Code != http.StatusOK {
		t.Fatalf("like: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var like struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}
	decodeBody(t, rec, &like)
	if !like.Liked || like.LikeCount != 1 {
		t.Errorf("like = %+v, want liked with count 1", like)
	}

	rec = httptest.NewRecorder()
	env.Posts.Get(rec, withChiURLParam(jsonRequest(http.MethodGet, "/posts/"+id, "", nil), "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	var got models.PostView
	decodeBody(t, rec, &got)
	if got.Likes != 1 {
		t.Errorf("likes = %d, want 1", got.Likes)
	}

	rec = httptest.NewRecorder()
	env.Posts.Delete(rec, withChiURLParam(jsonRequest(http.MethodDelete, "/posts/"+id, "", reader), "id", id))
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete by non-owner: status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = httptest.NewRecorder()
	env.Posts.Delete(rec, withChiURLParam(jsonRequest(http.MethodDelete, "/posts/"+id, "", author), "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	env.Posts.Get(rec, withChiURLParam(jsonRequest(http.MethodGet, "/posts/"+id, "", nil), "id", id))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestFeedRejectsBadCursor verifies a malformed cursor is a 400.
func TestFeedRejectsBadCursor(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Posts.Feed(rec, httptest.NewRequest(http.MethodGet, "/posts/feed?cursor=%25%25%25", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestLikeStatus verifies the like status reflects the caller's like and
// hides drafts from other users.
func TestLikeStatus(t *testing.T) {
	env := newTestEnv(t)
	author := testUser(t, env.DB, models.GroupMember)
	reader := testUser(t, env.DB, models.GroupMember)

	create := func(status string) string {
		rec := httptest.NewRecorder()
		env.Posts.Create(rec, jsonRequest(http.MethodPost, "/posts",
			`{"type":"text","title":"L `+uuid.NewString()[:6]+`","content":{"body":"x"},"status":"`+status+`"}`, author))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var v models.PostView
		decodeBody(t, rec, &v)
		return strconv.FormatInt(v.ID, 10)
	}
	published, draft := create("published"), create("draft")

	status := func(id string) (*httptest.ResponseRecorder, service.LikeResult) {
		rec := httptest.NewRecorder()
		env.Posts.LikeStatus(rec, jsonRequest(http.MethodGet, "/posts/like/status?post_id="+id, "", reader))
		var res service.LikeResult
		if rec.Code == http.StatusOK {
			decodeBody(t, rec, &res)
		}
		return rec, res
	}

	if rec, res := status(published); rec.Code != http.StatusOK || res.Liked {
		t.Fatalf("before like: status = %d, liked = %v", rec.Code, res.Liked)
	}

	rec := httptest.NewRecorder()
	env.Posts.Like(rec, jsonRequest(http.MethodPost, "/posts/like", `{"post_id":`+published+`}`, reader))
	if rec.Code != http.StatusOK {
		t.Fatalf("like: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if rec, res := status(published); rec.Code != http.StatusOK || !res.Liked || res.LikeCount != 1 {
		t.Errorf("after like: status = %d, res = %+v", rec.Code, res)
	}
	if rec, _ := status(draft); rec.Code != http.StatusNotFound {
		t.Errorf("draft: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
