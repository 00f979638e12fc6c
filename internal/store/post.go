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

	"featherpress/internal/cursor"
	"featherpress/internal/models"
)

// PostStore handles posts and the joined reads that build post details.
type PostStore struct {
	db DBTX
}

// NewPostStore creates a new PostStore.
func NewPostStore(db DBTX) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.type, p.title, p.url, p.user_id, p.category_id,
	p.body, p.caption, p.quote, p.quote_source, p.link_url, p.thumbnail, p.description`

func postFields(p *models.Post) []any {
	return []any{
		&p.ID, &p.Type, &p.Title, &p.URL, &p.UserID, &p.CategoryID,
		&p.Body, &p.Caption, &p.Quote, &p.QuoteSource, &p.LinkURL, &p.Thumbnail, &p.Description,
	}
}

// detailSelect joins a post with its attribute, author and category.
const detailSelect = `SELECT ` + postColumns + `, ` + attributeColumns + `,
	u.id, u.username, u.full_name, u.image, u.website, c.name
FROM posts p
JOIN post_attributes a ON a.post_id = p.id
JOIN users u ON u.id = p.user_id
LEFT JOIN categories c ON c.id = p.category_id`

func scanDetail(row scanner) (*models.PostDetail, error) {
	var d models.PostDetail
	var groups []byte
	dest := postFields(&d.Post)
	dest = append(dest, attributeFields(&d.Attribute, &groups)...)
	dest = append(dest,
		&d.Author.ID, &d.Author.Username, &d.Author.FullName, &d.Author.Image, &d.Author.Website,
		&d.Category,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := decodeGroups(groups, &d.Attribute); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostStore) queryDetails(ctx context.Context, query string, args ...any) ([]models.PostDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.PostDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post detail: %w", err)
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// Create inserts a post and sets p.ID.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (type, title, url, user_id, category_id,
			body, caption, quote, quote_source, link_url, thumbnail, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, p.Type, p.Title, p.URL, p.UserID, p.CategoryID,
		p.Body, p.Caption, p.Quote, p.QuoteSource, p.LinkURL, p.Thumbnail, p.Description,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update writes every column of p.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE posts SET
			type = $1, title = $2, url = $3, category_id = $4,
			body = $5, caption = $6, quote = $7, quote_source = $8,
			link_url = $9, thumbnail = $10, description = $11
		WHERE id = $12
	`, p.Type, p.Title, p.URL, p.CategoryID,
		p.Body, p.Caption, p.Quote, p.QuoteSource, p.LinkURL, p.Thumbnail, p.Description,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// FindByID retrieves a post row. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post
	err := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id).
		Scan(postFields(&p)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return &p, nil
}

// URLExists reports whether url is used by a post other than excludeID.
func (s *PostStore) URLExists(ctx context.Context, url string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE url = $1 AND id <> $2)`, url, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post url: %w", err)
	}
	return exists, nil
}

// Delete removes the post row. Dependent rows must be gone already.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// IDsByUser returns the ids of every post owned by userID.
func (s *PostStore) IDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM posts WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list post ids by user: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FeedQuery selects a page of published posts.
type FeedQuery struct {
	Limit  int
	After  *cursor.Position
	Search string
}

// Feed returns published posts newest first. Rows strictly after q.After
// in (created_at DESC, id DESC) order are returned, so chained pages
// never repeat or skip a post.
func (s *PostStore) Feed(ctx context.Context, q FeedQuery) ([]models.PostDetail, error) {
	var a args
	var b strings.Builder
	b.WriteString(detailSelect)
	b.WriteString(` WHERE a.status = 'published'`)

	if q.After != nil {
		t, id := a.add(q.After.CreatedAt), a.add(q.After.ID)
		fmt.Fprintf(&b, ` AND (a.created_at, p.id) < (%s::timestamptz, %s::bigint)`, t, id)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		ph := a.add(likePattern(search))
		fmt.Fprintf(&b, ` AND (p.title ILIKE %[1]s OR p.body ILIKE %[1]s OR p.caption ILIKE %[1]s
			OR p.description ILIKE %[1]s OR p.quote ILIKE %[1]s)`, ph)
	}
	fmt.Fprintf(&b, ` ORDER BY a.created_at DESC, p.id DESC LIMIT %s`, a.add(q.Limit))

	items, err := s.queryDetails(ctx, b.String(), a...)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	return items, nil
}

// AdminQuery filters the admin post listing. Zero fields match all.
type AdminQuery struct {
	Status models.PostStatus
	Type   models.PostType
	UserID int64
	Search string
	Page   Page
}

// AdminList returns one page of posts of any status, newest first, and
// the number of posts matching q.
func (s *PostStore) AdminList(ctx context.Context, q AdminQuery) ([]models.PostDetail, int64, error) {
	var a args
	var b strings.Builder
	b.WriteString(` WHERE TRUE`)
	if q.Status != "" {
		fmt.Fprintf(&b, ` AND a.status = %s`, a.add(string(q.Status)))
	}
	if q.Type != "" {
		fmt.Fprintf(&b, ` AND p.type = %s`, a.add(string(q.Type)))
	}
	if q.UserID > 0 {
		fmt.Fprintf(&b, ` AND p.user_id = %s`, a.add(q.UserID))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		ph := a.add(likePattern(search))
		fmt.Fprintf(&b, ` AND (p.title ILIKE %[1]s OR p.body ILIKE %[1]s OR p.caption ILIKE %[1]s
			OR p.description ILIKE %[1]s OR p.quote ILIKE %[1]s)`, ph)
	}
	where := b.String()

	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p
		JOIN post_attributes a ON a.post_id = p.id`+where, a...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count admin posts: %w", err)
	}

	query := detailSelect + where + fmt.Sprintf(` ORDER BY p.id DESC LIMIT %s OFFSET %s`,
		a.add(q.Page.Limit), a.add(q.Page.Offset()))
	items, err := s.queryDetails(ctx, query, a...)
	if err != nil {
		return nil, 0, fmt.Errorf("list admin posts: %w", err)
	}
	return items, total, nil
}

// Stats summarises posts by status and type. Posts created at or after
// recentSince count as recent.
func (s *PostStore) Stats(ctx context.Context, recentSince time.Time) (*models.PostStats, error) {
	st := models.PostStats{
		ByStatus: map[models.PostStatus]int64{},
		ByType:   map[models.PostType]int64{},
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE a.created_at >= $1)
		FROM posts p JOIN post_attributes a ON a.post_id = p.id
	`, recentSince).Scan(&st.Total, &st.Recent)
	if err != nil {
		return nil, fmt.Errorf("post stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT 'status', a.status, COUNT(*) FROM post_attributes a GROUP BY a.status
		UNION ALL
		SELECT 'type', p.type, COUNT(*) FROM posts p GROUP BY p.type
	`)
	if err != nil {
		return nil, fmt.Errorf("post stats by group: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, key string
		var n int64
		if err := rows.Scan(&kind, &key, &n); err != nil {
			return nil, fmt.Errorf("scan post stats: %w", err)
		}
		if kind == "status" {
			st.ByStatus[models.PostStatus(key)] = n
		} else {
			st.ByType[models.PostType(key)] = n
		}
	}
	return &st, rows.Err()
}

// Pinned returns every pinned, published post, newest first.
func (s *PostStore) Pinned(ctx context.Context) ([]models.PostDetail, error) {
	items, err := s.queryDetails(ctx, detailSelect+`
		WHERE a.pinned AND a.status = 'published'
		ORDER BY a.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query pinned posts: %w", err)
	}
	return items, nil
}

// ListByUser returns all posts of a user regardless of status.
func (s *PostStore) ListByUser(ctx context.Context, userID int64) ([]models.PostDetail, error) {
	items, err := s.queryDetails(ctx, detailSelect+`
		WHERE p.user_id = $1
		ORDER BY a.created_at DESC, p.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts by user: %w", err)
	}
	return items, nil
}

// ListByTag returns all posts carrying tag name.
func (s *PostStore) ListByTag(ctx context.Context, name string) ([]models.PostDetail, error) {
	items, err := s.queryDetails(ctx, detailSelect+`
		WHERE p.id IN (SELECT post_id FROM tags WHERE name = $1)
		ORDER BY a.created_at DESC, p.id DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("list posts by tag: %w", err)
	}
	return items, nil
}

// Detail returns one post with its attribute, author and category.
// Returns nil if the post or its attribute row does not exist.
func (s *PostStore) Detail(ctx context.Context, id int64) (*models.PostDetail, error) {
	d, err := scanDetail(s.db.QueryRowContext(ctx, detailSelect+` WHERE p.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post detail: %w", err)
	}
	return d, nil
}

// Hydrate fills tags, uploads and engagement counts of every detail with
// three set-based queries.
func (s *PostStore) Hydrate(ctx context.Context, details []models.PostDetail) error {
	if len(details) == 0 {
		return nil
	}
	ids := make([]int64, len(details))
	index := make(map[int64]*models.PostDetail, len(details))
	for i := range details {
		ids[i] = details[i].Post.ID
		index[ids[i]] = &details[i]
	}

	tagRows, err := s.db.QueryContext(ctx,
		`SELECT post_id, name FROM tags WHERE post_id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var postID int64
		var name string
		if err := tagRows.Scan(&postID, &name); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		index[postID].Tags = append(index[postID].Tags, name)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("load tags: %w", err)
	}

	uploads, err := NewUploadStore(s.db).ListByPosts(ctx, ids)
	if err != nil {
		return err
	}
	for _, u := range uploads {
		d := index[*u.PostID]
		d.Uploads = append(d.Uploads, u)
	}

	counts, err := s.Counts(ctx, ids)
	if err != nil {
		return err
	}
	for id, c := range counts {
		d := index[id]
		d.Likes, d.Shares, d.Views, d.Comments = c.Likes, c.Shares, c.Views, c.Comments
	}
	return nil
}

// Counts returns the engagement counts of the given posts by post id.
// Comments count approved ones only.
func (s *PostStore) Counts(ctx context.Context, ids []int64) (map[int64]models.PostCounts, error) {
	out := make(map[int64]models.PostCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id,
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
			(SELECT COUNT(*) FROM shares sh WHERE sh.post_id = p.id),
			(SELECT COUNT(*) FROM views v WHERE v.post_id = p.id),
			(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id AND cm.status = 'approved')
		FROM posts p WHERE p.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("load counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var c models.PostCounts
		if err := rows.Scan(&id, &c.Likes, &c.Shares, &c.Views, &c.Comments); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		out[id] = c
	}
	return out, rows.Err()
}

// PublishDue flips scheduled posts whose time has come to published and
// returns how many changed.
func (s *PostStore) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE post_attributes SET status = 'published', updated_at = NOW()
		WHERE status = 'scheduled' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("publish due posts: %w", err)
	}
	return rowsAffected(res), nil
}

func decodeGroups(raw []byte, a *models.PostAttribute) error {
	a.VisibilityGroups = []int64{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &a.VisibilityGroups); err != nil {
		return fmt.Errorf("decode visibility groups: %w", err)
	}
	return nil
}
