// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"featherpress/internal/auth"
	"featherpress/internal/handlers"
	"featherpress/internal/models"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

// testRouter builds the router with handlers that have no services. Only
// routes rejected by middleware may be exercised with it.
func testRouter(t *testing.T) (http.Handler, *auth.Issuer, string) {
	t.Helper()
	issuer := auth.NewIssuer("router-test-secret", time.Hour)
	dir := t.TempDir()
	h := Handlers{
		Posts:    handlers.NewPosts(nil, nil, nil, 1<<20),
		Comments: handlers.NewComments(nil),
		Auth:     handlers.NewAuth(nil),
		Public:   handlers.NewPublic(nil, nil),
		Admin:    handlers.NewAdmin(nil, nil, nil, nil, 1<<20),
	}
	return New(issuer, nil, dir, h), issuer, dir
}

func bearer(t *testing.T, issuer *auth.Issuer, groupID int64) string {
	t.Helper()
	tok, err := issuer.Issue(&models.User{ID: 11, Email: "router@featherpress.local", GroupID: groupID})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return "Bearer " + tok
}

func TestRouteGuards(t *testing.T) {
	r, issuer, _ := testRouter(t)
	member := bearer(t, issuer, models.GroupMember)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"health", "GET", "/health", "", http.StatusOK},
		{"mine needs auth", "GET", "/posts/mine", "", http.StatusUnauthorized},
		{"create needs auth", "POST", "/posts", "", http.StatusUnauthorized},
		{"like needs auth", "POST", "/posts/like", "", http.StatusUnauthorized},
		{"comment edit needs auth", "PATCH", "/comments/3", "", http.StatusUnauthorized},
		{"me needs auth", "GET", "/auth/me", "", http.StatusUnauthorized},
		{"admin anonymous", "GET", "/admin/users", "", http.StatusUnauthorized},
		{"admin as member", "GET", "/admin/users", member, http.StatusForbidden},
		{"spam as member", "GET", "/admin/spam", member, http.StatusForbidden},
		{"like status needs auth", "GET", "/posts/like/status?post_id=1", "", http.StatusUnauthorized},
		{"admin posts as member", "GET", "/admin/posts", member, http.StatusForbidden},
		{"admin post stats anonymous", "GET", "/admin/posts/stats", "", http.StatusUnauthorized},
		{"admin upload stats as member", "GET", "/admin/uploads/stats", member, http.StatusForbidden},
		{"admin upload rename as member", "PUT", "/admin/uploads/4", member, http.StatusForbidden},
		{"admin tag stats as member", "GET", "/admin/tags/stats", member, http.StatusForbidden},
		{"admin category search as member", "GET", "/admin/categories/search?q=go", member, http.StatusForbidden},
		{"invalid token", "GET", "/posts/feed", "Bearer nonsense", http.StatusUnauthorized},
		{"unknown route", "GET", "/nowhere/at/all", "", http.StatusNotFound},
		{"wrong method", "DELETE", "/health", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("%s %s: got %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	r, _, _ := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestUploadsServed(t *testing.T) {
	r, _, dir := testRouter(t)

	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "images", "a.txt"), []byte("pixels"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/uploads/images/a.txt", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "pixels" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "pixels")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/uploads/images/missing.txt", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing file: status = %d, want 404", rec.Code)
	}
}
