// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"featherpress/internal/auth"
	"featherpress/internal/models"
	"featherpress/internal/store"
)

// maxCommentLen bounds a comment body in characters.
const maxCommentLen = 10_000

// CommentInput is a new comment.
type CommentInput struct {
	PostID    int64  `json:"post_id" validate:"required,gt=0"`
	Body      string `json:"body" validate:"required"`
	ParentID  *int64 `json:"parent_id" validate:"omitempty,gt=0"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// CommentQuery selects a page of the admin comment or spam view. Status
// holds comment statuses in the comment view and spam labels in the spam
// view.
type CommentQuery struct {
	Status   []string
	Search   string
	Author   string
	PostID   int64
	DateFrom string
	DateTo   string
	SortBy   string
	Order    string
	Page     int
	Limit    int
}

// CommentList is one page of comments plus moderation counts.
type CommentList struct {
	Comments []models.Comment    `json:"comments"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	Limit    int                 `json:"limit"`
	Pages    int                 `json:"pages"`
	Stats    models.CommentStats `json:"stats"`
}

// SpamComment is a comment whose status uses the spam-view labels.
type SpamComment struct {
	models.Comment
	Status string `json:"status"`
}

// SpamList is one page of the spam view.
type SpamList struct {
	Comments []SpamComment    `json:"comments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Pages    int              `json:"pages"`
	Stats    models.SpamStats `json:"stats"`
}

// CommentGroup is the comments of one post on the current page.
type CommentGroup struct {
	PostID        int64            `json:"postId"`
	PostTitle     string           `json:"postTitle"`
	TotalComments int64            `json:"totalComments"`
	PageComments  int              `json:"pageComments"`
	Comments      []models.Comment `json:"comments"`
}

// GroupedComments is a comment page grouped by post.
type GroupedComments struct {
	Groups []CommentGroup `json:"groups"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Pages  int            `json:"pages"`
}

// PostComments is one page of approved comments of a post.
type PostComments struct {
	Comments []models.Comment `json:"comments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// Comments handles comment writes and moderation.
type Comments struct {
	db *sql.DB
}

// NewComments creates the comment service.
func NewComments(db *sql.DB) *Comments {
	return &Comments{db: db}
}

// Create stores a pending comment. Anonymous callers are allowed.
func (s *Comments) Create(ctx context.Context, in CommentInput, caller *auth.Identity) (*models.Comment, error) {
	if caller != nil && caller.Role.Banned() {
		return nil, fmt.Errorf("%w: account is banned", ErrPermission)
	}
	body, err := checkBody(in.Body)
	if err != nil {
		return nil, err
	}

	post, err := readablePost(ctx, s.db, in.PostID, caller)
	if err != nil {
		return nil, err
	}
	if !post.Attribute.AllowComments {
		return nil, fmt.Errorf("%w: comments are closed on this post", ErrPermission)
	}

	comments := store.NewCommentStore(s.db)
	if in.ParentID != nil {
		parent, err := comments.FindByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != in.PostID {
			return nil, invalid("parent comment does not belong to this post")
		}
	}

	c := &models.Comment{
		PostID:   in.PostID,
		ParentID: in.ParentID,
		Body:     body,
		Status:   models.CommentPending,
	}
	if caller != nil {
		c.UserID = &caller.UserID
	}
	if ip := truncate(in.IP, maxClientIPLen); ip != "" {
		c.UserIP = &ip
	}
	if ua := truncate(in.UserAgent, maxUserAgentLen); ua != "" {
		c.UserAgent = &ua
	}
	if err := comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ForPost returns approved comments of a post, oldest first. Posts the
// caller cannot read report ErrNotFound.
func (s *Comments) ForPost(ctx context.Context, postID int64, page, limit int, caller *auth.Identity) (*PostComments, error) {
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return nil, err
	}
	if _, err := readablePost(ctx, s.db, postID, caller); err != nil {
		return nil, err
	}
	items, total, err := store.NewCommentStore(s.db).ListApproved(ctx, postID, store.Page{Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Comment{}
	}
	return &PostComments{Comments: items, Total: total, Page: page, Limit: limit}, nil
}

// Edit replaces the body of the caller's own comment. The comment goes
// back to pending.
func (s *Comments) Edit(ctx context.Context, id int64, body string, caller *auth.Identity) (*models.Comment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	body, err := checkBody(body)
	if err != nil {
		return nil, err
	}

	comments := store.NewCommentStore(s.db)
	c, err := comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("comment")
	}
	if c.UserID == nil || *c.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: not your comment", ErrPermission)
	}
	if err := comments.UpdateBody(ctx, id, body); err != nil {
		return nil, err
	}
	return comments.FindByID(ctx, id)
}

// Delete removes a comment owned by the caller, or any comment for admins.
func (s *Comments) Delete(ctx context.Context, id int64, caller *auth.Identity) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	comments := store.NewCommentStore(s.db)
	c, err := comments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return notFound("comment")
	}
	owner := c.UserID != nil && *c.UserID == caller.UserID
	if !owner && !isAdmin(caller) {
		return fmt.Errorf("%w: not your comment", ErrPermission)
	}
	_, err = comments.Delete(ctx, id)
	return err
}

// List is the admin comment view.
func (s *Comments) List(ctx context.Context, q CommentQuery) (*CommentList, error) {
	statuses := make([]models.CommentStatus, 0, len(q.Status))
	for _, name := range q.Status {
		st := models.CommentStatus(name)
		if !st.Valid() {
			return nil, invalid("invalid comment status %q", name)
		}
		statuses = append(statuses, st)
	}
	f, err := q.filter(statuses)
	if err != nil {
		return nil, err
	}

	comments := store.NewCommentStore(s.db)
	items, total, err := comments.List(ctx, f)
	if err != nil {
		return nil, err
	}
	stats, err := comments.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Comment{}
	}
	return &CommentList{
		Comments: items,
		Total:    total,
		Page:     f.Page.Page,
		Limit:    f.Page.Limit,
		Pages:    pages(total, f.Page.Limit),
		Stats:    *stats,
	}, nil
}

// SpamList is the admin spam view. Without a status filter it shows spam.
func (s *Comments) SpamList(ctx context.Context, q CommentQuery) (*SpamList, error) {
	labels := q.Status
	if len(labels) == 0 {
		labels = []string{string(models.CommentSpam)}
	}
	statuses := make([]models.CommentStatus, 0, len(labels))
	for _, label := range labels {
		st, ok := models.StatusFromSpamLabel(label)
		if !ok {
			return nil, invalid("invalid spam status %q: use spam, approved or rejected", label)
		}
		statuses = append(statuses, st)
	}
	f, err := q.filter(statuses)
	if err != nil {
		return nil, err
	}

	comments := store.NewCommentStore(s.db)
	items, total, err := comments.List(ctx, f)
	if err != nil {
		return nil, err
	}
	stats, err := comments.Stats(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SpamComment, len(items))
	for i, c := range items {
		out[i] = SpamComment{Comment: c, Status: c.Status.SpamLabel()}
	}
	return &SpamList{
		Comments: out,
		Total:    total,
		Page:     f.Page.Page,
		Limit:    f.Page.Limit,
		Pages:    pages(total, f.Page.Limit),
		Stats:    stats.SpamView(),
	}, nil
}

// Grouped returns a comment page grouped by post. Each group carries the
// post's comment total across all pages.
func (s *Comments) Grouped(ctx context.Context, q CommentQuery) (*GroupedComments, error) {
	list, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}

	var order []int64
	byPost := make(map[int64]*CommentGroup)
	for _, c := range list.Comments {
		g, ok := byPost[c.PostID]
		if !ok {
			g = &CommentGroup{PostID: c.PostID, PostTitle: c.PostTitle}
			byPost[c.PostID] = g
			order = append(order, c.PostID)
		}
		g.Comments = append(g.Comments, c)
		g.PageComments++
	}

	totals, err := store.NewCommentStore(s.db).TotalsByPost(ctx, order)
	if err != nil {
		return nil, err
	}
	groups := make([]CommentGroup, 0, len(order))
	for _, id := range order {
		g := byPost[id]
		g.TotalComments = totals[id]
		groups = append(groups, *g)
	}
	return &GroupedComments{
		Groups: groups,
		Total:  list.Total,
		Page:   list.Page,
		Limit:  list.Limit,
		Pages:  list.Pages,
	}, nil
}

// SetStatus moves one comment to status.
func (s *Comments) SetStatus(ctx context.Context, id int64, status models.CommentStatus) error {
	if !status.Valid() {
		return invalid("invalid comment status %q", status)
	}
	ok, err := store.NewCommentStore(s.db).SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("comment")
	}
	return nil
}

// SetSpamStatus moves one comment to the status named by a spam label.
func (s *Comments) SetSpamStatus(ctx context.Context, id int64, label string) error {
	status, ok := models.StatusFromSpamLabel(label)
	if !ok {
		return invalid("invalid spam status %q: use spam, approved or rejected", label)
	}
	return s.SetStatus(ctx, id, status)
}

// Comment-view and spam-view batch actions.
const (
	ActionApprove = "approve"
	ActionDeny    = "deny"
	ActionReject  = "reject"
	ActionSpam    = "spam"
	ActionDelete  = "delete"
)

var (
	commentActions = map[string]models.CommentStatus{
		ActionApprove: models.CommentApproved,
		ActionDeny:    models.CommentDenied,
		ActionSpam:    models.CommentSpam,
	}
	spamActions = map[string]models.CommentStatus{
		ActionApprove: models.CommentApproved,
		ActionReject:  models.CommentDenied,
	}
)

// Batch applies action to every listed comment with one statement and
// returns the affected count. spamView selects the spam-view vocabulary.
func (s *Comments) Batch(ctx context.Context, ids []int64, action string, spamView bool) (int64, error) {
	if len(ids) == 0 {
		return 0, invalid("comment_ids must not be empty")
	}
	comments := store.NewCommentStore(s.db)
	if action == ActionDelete {
		return comments.BatchDelete(ctx, ids)
	}

	actions := commentActions
	if spamView {
		actions = spamActions
	}
	status, ok := actions[action]
	if !ok {
		return 0, invalid("invalid action %q", action)
	}
	n, err := comments.BatchSetStatus(ctx, ids, status)
	if err != nil {
		return 0, err
	}
	slog.Info("comments moderated", "action", action, "requested", len(ids), "affected", n)
	return n, nil
}

// Stats returns the moderation counts.
func (s *Comments) Stats(ctx context.Context) (*models.CommentStats, error) {
	return store.NewCommentStore(s.db).Stats(ctx)
}

func (q CommentQuery) filter(statuses []models.CommentStatus) (store.CommentFilter, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return store.CommentFilter{}, err
	}
	f := store.CommentFilter{
		Statuses: statuses,
		Search:   q.Search,
		Author:   strings.TrimSpace(q.Author),
		PostID:   q.PostID,
		Desc:     true,
		Page:     store.Page{Page: page, Limit: limit},
	}

	switch q.SortBy {
	case "", "created_at", "updated_at":
		f.SortBy = q.SortBy
	default:
		return f, invalid("sort_by must be created_at or updated_at")
	}
	switch strings.ToLower(q.Order) {
	case "", "desc":
	case "asc":
		f.Desc = false
	default:
		return f, invalid("order must be asc or desc")
	}

	if f.DateFrom, err = parseDate("date_from", q.DateFrom, false); err != nil {
		return f, err
	}
	if f.DateTo, err = parseDate("date_to", q.DateTo, true); err != nil {
		return f, err
	}
	return f, nil
}

// parseDate accepts RFC 3339 or a plain date. A plain date_to covers the
// whole day.
func parseDate(name, s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, invalid("%s must be a date (YYYY-MM-DD) or RFC 3339 time", name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func checkBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", invalid("comment body is required")
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return "", invalid("comment body is too long (max %d characters)", maxCommentLen)
	}
	return body, nil
}
