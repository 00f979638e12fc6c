// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"featherpress/internal/models"
)

// UploadStore handles upload rows. The files themselves live in the
// media sink; metadata records where.
type UploadStore struct {
	db DBTX
}

// NewUploadStore creates a new UploadStore.
func NewUploadStore(db DBTX) *UploadStore {
	return &UploadStore{db: db}
}

const uploadColumns = `id, url, type, filename, size, mime_type, user_id, post_id, standalone, metadata, created_at`

func scanUpload(row scanner) (*models.Upload, error) {
	var u models.Upload
	var meta []byte
	err := row.Scan(
		&u.ID, &u.URL, &u.Kind, &u.Filename, &u.Size, &u.MimeType,
		&u.UserID, &u.PostID, &u.Standalone, &meta, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &u.Meta); err != nil {
			return nil, fmt.Errorf("decode upload metadata: %w", err)
		}
	}
	return &u, nil
}

func (s *UploadStore) query(ctx context.Context, query string, args ...any) ([]models.Upload, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}

// Create inserts an upload and fills its id and created_at.
func (s *UploadStore) Create(ctx context.Context, u *models.Upload) error {
	meta, err := jsonText(u.Meta)
	if err != nil {
		return fmt.Errorf("encode upload metadata: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO uploads (url, type, filename, size, mime_type, user_id, post_id, standalone, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
		RETURNING id, created_at
	`, u.URL, u.Kind, u.Filename, u.Size, u.MimeType, u.UserID, u.PostID, u.Standalone, meta,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	return nil
}

// FindByID retrieves an upload. Returns nil if not found.
func (s *UploadStore) FindByID(ctx context.Context, id int64) (*models.Upload, error) {
	u, err := scanUpload(s.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find upload by id: %w", err)
	}
	return u, nil
}

// ListByPost returns the uploads attached to one post in upload order.
func (s *UploadStore) ListByPost(ctx context.Context, postID int64) ([]models.Upload, error) {
	items, err := s.query(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE post_id = $1 ORDER BY id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list uploads by post: %w", err)
	}
	return items, nil
}

// ListByPosts returns the uploads of several posts in upload order.
func (s *UploadStore) ListByPosts(ctx context.Context, postIDs []int64) ([]models.Upload, error) {
	items, err := s.query(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE post_id = ANY($1) ORDER BY id`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("list uploads by posts: %w", err)
	}
	return items, nil
}

// ListByUser returns every upload owned by a user.
func (s *UploadStore) ListByUser(ctx context.Context, userID int64) ([]models.Upload, error) {
	items, err := s.query(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list uploads by user: %w", err)
	}
	return items, nil
}

// UploadFilter narrows an admin upload listing.
type UploadFilter struct {
	Kind        models.UploadKind
	OrphansOnly bool
	Page        Page
}

// List returns one page of uploads, newest first, and the total count.
func (s *UploadStore) List(ctx context.Context, f UploadFilter) ([]models.Upload, int64, error) {
	var a args
	var where []string
	if f.Kind != "" {
		where = append(where, "type = "+a.add(f.Kind))
	}
	if f.OrphansOnly {
		where = append(where, "post_id IS NULL")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`+cond, a...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count uploads: %w", err)
	}

	limit, offset := a.add(f.Page.Limit), a.add(f.Page.Offset())
	items, err := s.query(ctx,
		`SELECT `+uploadColumns+` FROM uploads`+cond+` ORDER BY created_at DESC, id DESC LIMIT `+limit+` OFFSET `+offset,
		a...)
	if err != nil {
		return nil, 0, fmt.Errorf("list uploads: %w", err)
	}
	return items, total, nil
}

// OrphansBefore returns orphaned uploads created before cutoff. Standalone
// uploads are included only when asked for.
func (s *UploadStore) OrphansBefore(ctx context.Context, cutoff time.Time, withStandalone bool) ([]models.Upload, error) {
	items, err := s.query(ctx,
		`SELECT `+uploadColumns+` FROM uploads
		WHERE post_id IS NULL AND created_at < $1 AND ($2 OR NOT standalone)
		ORDER BY id`, cutoff, withStandalone)
	if err != nil {
		return nil, fmt.Errorf("list orphan uploads: %w", err)
	}
	return items, nil
}

// UpdateInfo sets the display filename and MIME type of an upload.
func (s *UploadStore) UpdateInfo(ctx context.Context, id int64, filename, mimeType string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET filename = $2, mime_type = $3 WHERE id = $1`, id, filename, mimeType)
	if err != nil {
		return fmt.Errorf("update upload: %w", err)
	}
	return nil
}

// Stats counts uploads overall, by type, since recentSince and without a
// post. ByType holds only kinds that have uploads.
func (s *UploadStore) Stats(ctx context.Context, recentSince time.Time) (*models.UploadStats, error) {
	st := &models.UploadStats{ByType: map[models.UploadKind]int64{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(size), 0),
		       COUNT(*) FILTER (WHERE created_at >= $1),
		       COUNT(*) FILTER (WHERE post_id IS NULL),
		       COUNT(*) FILTER (WHERE post_id IS NULL AND standalone)
		FROM uploads
	`, recentSince).Scan(&st.Total, &st.StorageBytes, &st.Recent, &st.Orphaned, &st.Standalone)
	if err != nil {
		return nil, fmt.Errorf("upload stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM uploads GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("upload stats by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind models.UploadKind
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan upload stats: %w", err)
		}
		st.ByType[kind] = n
	}
	return st, rows.Err()
}

// Delete removes one upload row.
func (s *UploadStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// DeleteByIDs removes several upload rows and returns the count.
func (s *UploadStore) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete uploads: %w", err)
	}
	return rowsAffected(res), nil
}

// DeleteByPost removes the upload rows of a post.
func (s *UploadStore) DeleteByPost(ctx context.Context, postID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete uploads by post: %w", err)
	}
	return nil
}
