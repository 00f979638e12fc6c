// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"featherpress/internal/database"
	"featherpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "featherpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "featherpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser creates a throwaway user in group and removes it, with
// everything it owns, when the test finishes.
func testUser(t *testing.T, db *sql.DB, groupID int64) *models.User {
	t.Helper()
	name := "t" + uuid.NewString()[:12]
	u := &models.User{
		Username: name,
		Email:    name + "@store-test.local",
		GroupID:  groupID,
		Approved: true,
		IsActive: true,
	}
	if err := NewUserStore(db).Create(context.Background(), u, "testpass123"); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { cleanUser(t, db, u.ID) })
	return u
}

// cleanUser removes a user and every row that references it.
func cleanUser(t *testing.T, db *sql.DB, userID int64) {
	t.Helper()
	rows, _ := db.Query("SELECT id FROM posts WHERE user_id = $1", userID)
	var ids []int64
	if rows != nil {
		for rows.Next() {
			var id int64
			rows.Scan(&id)
			ids = append(ids, id)
		}
		rows.Close()
	}
	cleanPosts(t, db, ids...)
	for _, table := range []string{"comments", "likes", "views", "shares", "tags", "uploads"} {
		db.Exec("DELETE FROM "+table+" WHERE user_id = $1", userID)
	}
	db.Exec("DELETE FROM users WHERE id = $1", userID)
}

// cleanPosts removes posts and their dependent rows. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		for _, table := range []string{"views", "likes", "shares", "comments", "tags", "uploads", "post_attributes"} {
			db.Exec("DELETE FROM "+table+" WHERE post_id = $1", id)
		}
		db.Exec("DELETE FROM posts WHERE id = $1", id)
	}
}

// testPost inserts a published text post owned by userID.
func testPost(t *testing.T, db *sql.DB, userID int64, title string) *models.PostDetail {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	body := "body of " + title
	p := &models.Post{
		Type:   models.PostTypeText,
		Title:  title,
		URL:    "post-" + suffix,
		UserID: userID,
		Body:   &body,
	}
	if err := NewPostStore(db).Create(ctx, p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	a := &models.PostAttribute{
		PostID:        p.ID,
		Status:        models.PostStatusPublished,
		Slug:          p.URL,
		Visibility:    models.VisibilityPublic,
		AllowComments: true,
		License:       models.DefaultLicense,
	}
	if err := NewAttributeStore(db).Create(ctx, a); err != nil {
		t.Fatalf("create attribute: %v", err)
	}
	t.Cleanup(func() { cleanPosts(t, db, p.ID) })
	return &models.PostDetail{Post: *p, Attribute: *a}
}
