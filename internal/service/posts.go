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

	"github.com/goccy/go-json"

	"featherpress/internal/auth"
	"featherpress/internal/cache"
	"featherpress/internal/database"
	"featherpress/internal/models"
	"featherpress/internal/slug"
	"featherpress/internal/storage"
	"featherpress/internal/store"
)

// Multipart field names that carry post attachments.
const (
	FieldImageFiles   = "imageFiles"
	FieldVideoFile    = "videoFile"
	FieldAudioFile    = "audioFile"
	FieldFiles        = "files"
	FieldPosterImage  = "posterImage"
	FieldCaptionFile  = "captionFile"
	FieldCaptionFiles = "captionFiles"
)

// fieldKinds maps each attachment field to the upload kind it produces.
var fieldKinds = map[string]models.UploadKind{
	FieldImageFiles:   models.UploadImage,
	FieldVideoFile:    models.UploadVideo,
	FieldAudioFile:    models.UploadAudio,
	FieldFiles:        models.UploadFile,
	FieldPosterImage:  models.UploadImage,
	FieldCaptionFile:  models.UploadCaption,
	FieldCaptionFiles: models.UploadCaption,
}

// IsAttachmentField reports whether name is a recognised file part.
func IsAttachmentField(name string) bool {
	_, ok := fieldKinds[name]
	return ok
}

// File is one attachment of a post request.
type File struct {
	Field    string
	Filename string
	Data     []byte
}

// PostInput is a create request. Content is decoded against Type.
type PostInput struct {
	Type             models.PostType   `json:"type"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	Content          json.RawMessage   `json:"content"`
	Tags             []string          `json:"tags"`
	Category         string            `json:"category"`
	Status           models.PostStatus `json:"status"`
	Pinned           bool              `json:"pinned"`
	Visibility       models.Visibility `json:"visibility"`
	VisibilityGroups []int64           `json:"visibilityGroups"`
	AllowComments    *bool             `json:"allowComments"`
	CommentStatus    string            `json:"commentStatus"`
	ScheduledDate    string            `json:"scheduledDate"`
	OriginalWork     *bool             `json:"originalWork"`
	RightsHolder     *string           `json:"rightsHolder"`
	License          string            `json:"license"`

	// Set by the handler, never decoded from JSON.
	Files     []File `json:"-"`
	Multipart bool   `json:"-"`
}

// PostPatch is an update request. Nil fields were absent and are left alone.
type PostPatch struct {
	Type             *models.PostType   `json:"type"`
	Title            *string            `json:"title"`
	Slug             *string            `json:"slug"`
	Content          json.RawMessage    `json:"content"`
	Tags             *[]string          `json:"tags"`
	Category         *string            `json:"category"`
	Status           *models.PostStatus `json:"status"`
	Pinned           *bool              `json:"pinned"`
	Visibility       *models.Visibility `json:"visibility"`
	VisibilityGroups *[]int64           `json:"visibilityGroups"`
	AllowComments    *bool              `json:"allowComments"`
	CommentStatus    *string            `json:"commentStatus"`
	ScheduledDate    *string            `json:"scheduledDate"`
	OriginalWork     *bool              `json:"originalWork"`
	RightsHolder     *string            `json:"rightsHolder"`
	License          *string            `json:"license"`
}

// Posts runs the transactional post write operations.
type Posts struct {
	db       *sql.DB
	sink     *storage.Sink
	cache    *cache.ResponseCache
	counters *cache.Counters
	feed     *Feed
}

// NewPosts creates the post service. rc and counters may be nil.
func NewPosts(db *sql.DB, sink *storage.Sink, rc *cache.ResponseCache, counters *cache.Counters) *Posts {
	return &Posts{db: db, sink: sink, cache: rc, counters: counters, feed: NewFeed(db, rc)}
}

// Create validates in, stores its attachments and writes the post, its
// attribute row, tags and uploads in one transaction. Files stored before
// a failed commit are removed again.
func (s *Posts) Create(ctx context.Context, in PostInput, caller *auth.Identity) (*models.PostView, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if !caller.Role.CanAuthor() {
		return nil, fmt.Errorf("%w: your role cannot create posts", ErrPermission)
	}
	if !in.Type.Valid() {
		return nil, invalid("invalid post type %q", in.Type)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	content, err := models.DecodeContent(in.Type, in.Content)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if err := models.CheckRequired(content); err != nil {
		return nil, invalid("%v", err)
	}
	if err := checkAttachments(content, in.Files, in.Multipart); err != nil {
		return nil, err
	}

	attr := models.PostAttribute{
		Status:           models.PostStatusDraft,
		Visibility:       models.VisibilityPublic,
		VisibilityGroups: in.VisibilityGroups,
		Pinned:           in.Pinned,
		AllowComments:    true,
		OriginalWork:     in.OriginalWork,
		RightsHolder:     trimmed(in.RightsHolder),
		License:          strings.TrimSpace(in.License),
	}
	if in.Status != "" {
		attr.Status = in.Status
	}
	if in.Visibility != "" {
		attr.Visibility = in.Visibility
	}
	if attr.License == "" {
		attr.License = models.DefaultLicense
	}
	if attr.VisibilityGroups == nil {
		attr.VisibilityGroups = []int64{}
	}
	if in.CommentStatus != "" {
		attr.AllowComments = in.CommentStatus == "open"
	} else if in.AllowComments != nil {
		attr.AllowComments = *in.AllowComments
	}
	if attr.ScheduledAt, err = parseSchedule(in.ScheduledDate); err != nil {
		return nil, err
	}
	if err := checkAttribute(&attr); err != nil {
		return nil, err
	}

	p := &models.Post{Type: in.Type, Title: title, UserID: caller.UserID}
	models.ApplyContent(p, content)

	var saved []*storage.Object
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if in.Category != "" {
			id, err := findOrCreateCategory(ctx, tx, in.Category, caller.UserID)
			if err != nil {
				return err
			}
			p.CategoryID = &id
		}

		url, err := uniquePostURL(ctx, tx, in.Slug, title, 0)
		if err != nil {
			return err
		}
		p.URL = url
		if err := store.NewPostStore(tx).Create(ctx, p); err != nil {
			return conflictOnUnique(err, "post url already exists")
		}

		attr.PostID = p.ID
		attr.Slug = p.URL
		if err := store.NewAttributeStore(tx).Create(ctx, &attr); err != nil {
			return conflictOnUnique(err, "post slug already exists")
		}

		if err := store.NewTagStore(tx).Add(ctx, p.ID, caller.UserID, normalizeTags(in.Tags)); err != nil {
			return err
		}

		saved, err = s.attach(ctx, tx, p, in.Files, caller.UserID)
		return err
	})
	if err != nil {
		for _, o := range saved {
			removeFile(ctx, s.sink, o.URL, o.Backend, o.Key)
		}
		return nil, err
	}

	slog.Info("post created", "post_id", p.ID, "type", p.Type, "user_id", caller.UserID)
	s.invalidate(ctx, 0)
	return s.feed.view(ctx, s.db, p.ID)
}

// attach stores files through the sink, records their upload rows and
// mirrors video and poster URLs into the post when its type owns them.
// It returns every object stored so far, even on error.
func (s *Posts) attach(ctx context.Context, tx store.DBTX, p *models.Post, files []File, userID int64) ([]*storage.Object, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.sink == nil {
		return nil, fmt.Errorf("%w: no storage configured", ErrStorage)
	}

	uploads := store.NewUploadStore(tx)
	var saved []*storage.Object
	mirrored := false
	for _, f := range files {
		kind, ok := fieldKinds[f.Field]
		if !ok {
			continue
		}
		obj, err := s.sink.Save(ctx, f.Filename, f.Data, kind)
		if err != nil {
			return saved, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		saved = append(saved, obj)

		u := &models.Upload{
			URL:      obj.URL,
			Kind:     kind,
			Filename: f.Filename,
			Size:     obj.Size,
			MimeType: obj.MimeType,
			UserID:   userID,
			PostID:   &p.ID,
			Meta:     obj.Meta(),
		}
		if err := uploads.Create(ctx, u); err != nil {
			return saved, err
		}

		url := obj.URL
		switch {
		case f.Field == FieldVideoFile && p.Type == models.PostTypeVideo:
			p.LinkURL = &url
			mirrored = true
		case f.Field == FieldPosterImage && (p.Type == models.PostTypeVideo || p.Type == models.PostTypeLink):
			p.Thumbnail = &url
			mirrored = true
		}
	}
	if mirrored {
		if err := store.NewPostStore(tx).Update(ctx, p); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// Update applies the present keys of patch. The post and its attribute
// are written in one transaction.
func (s *Posts) Update(ctx context.Context, postID int64, patch PostPatch, caller *auth.Identity) (*models.PostView, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	p, err := store.NewPostStore(s.db).FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("post")
	}
	if !canModify(caller, p.UserID) {
		return nil, fmt.Errorf("%w: not your post", ErrPermission)
	}

	attr, err := store.NewAttributeStore(s.db).FindByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	missingAttr := attr == nil
	if missingAttr {
		attr = &models.PostAttribute{
			PostID:           postID,
			Status:           models.PostStatusDraft,
			Visibility:       models.VisibilityPublic,
			VisibilityGroups: []int64{},
			AllowComments:    true,
			License:          models.DefaultLicense,
			Slug:             p.URL,
		}
	}

	oldTitle := p.Title
	if err := applyContentPatch(p, patch); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("title cannot be empty")
		}
		p.Title = title
	}
	if err := applyAttributePatch(attr, patch); err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if regen, explicit := slugChange(patch, oldTitle, p); regen {
			url, err := uniquePostURL(ctx, tx, explicit, p.Title, p.ID)
			if err != nil {
				return err
			}
			p.URL = url
			attr.Slug = url
		}

		if patch.Category != nil {
			if name := strings.TrimSpace(*patch.Category); name == "" {
				p.CategoryID = nil
			} else {
				id, err := findOrCreateCategory(ctx, tx, name, caller.UserID)
				if err != nil {
					return err
				}
				p.CategoryID = &id
			}
		}

		if err := store.NewPostStore(tx).Update(ctx, p); err != nil {
			return conflictOnUnique(err, "post url already exists")
		}

		attrs := store.NewAttributeStore(tx)
		if missingAttr {
			err = attrs.Create(ctx, attr)
		} else {
			err = attrs.Update(ctx, attr)
		}
		if err != nil {
			return conflictOnUnique(err, "post slug already exists")
		}

		if patch.Tags != nil {
			tags := store.NewTagStore(tx)
			if err := tags.DeleteByPost(ctx, p.ID); err != nil {
				return err
			}
			if err := tags.Add(ctx, p.ID, caller.UserID, normalizeTags(*patch.Tags)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("post updated", "post_id", p.ID, "user_id", caller.UserID)
	s.invalidate(ctx, 0)
	return s.feed.view(ctx, s.db, p.ID)
}

// slugChange reports whether an update must pick a new url, and the
// explicit slug to derive it from. A changed title regenerates the url
// unless a slug is given; an explicit slug applies when it differs from
// the current url. Re-sending the same title keeps a suffixed url.
func slugChange(patch PostPatch, oldTitle string, p *models.Post) (bool, string) {
	if patch.Slug != nil {
		explicit := *patch.Slug
		return slugBase(explicit, p.Title) != p.URL, explicit
	}
	return patch.Title != nil && p.Title != oldTitle, ""
}

// applyContentPatch handles type changes and content keys. A type change
// clears every column of the previous variant before the new one is
// applied, and the result is checked against the post's final type.
func applyContentPatch(p *models.Post, patch PostPatch) error {
	typeChanged := patch.Type != nil && *patch.Type != p.Type
	if typeChanged {
		if !patch.Type.Valid() {
			return invalid("invalid post type %q", *patch.Type)
		}
		p.ClearContent()
		p.Type = *patch.Type
	}
	if patch.Content == nil && !typeChanged {
		return nil
	}

	content, err := models.DecodeContent(p.Type, patch.Content)
	if err != nil {
		return invalid("%v", err)
	}
	models.ApplyContent(p, content)

	current, err := models.ContentFromPost(p)
	if err != nil {
		return invalid("%v", err)
	}
	if err := models.CheckRequired(current); err != nil {
		return invalid("%v", err)
	}
	return nil
}

func applyAttributePatch(a *models.PostAttribute, patch PostPatch) error {
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Pinned != nil {
		a.Pinned = *patch.Pinned
	}
	if patch.Visibility != nil {
		a.Visibility = *patch.Visibility
	}
	if patch.VisibilityGroups != nil {
		a.VisibilityGroups = *patch.VisibilityGroups
	}
	if patch.CommentStatus != nil {
		a.AllowComments = *patch.CommentStatus == "open"
	} else if patch.AllowComments != nil {
		a.AllowComments = *patch.AllowComments
	}
	if patch.ScheduledDate != nil {
		at, err := parseSchedule(*patch.ScheduledDate)
		if err != nil {
			return err
		}
		a.ScheduledAt = at
	}
	if patch.OriginalWork != nil {
		a.OriginalWork = patch.OriginalWork
	}
	if patch.RightsHolder != nil {
		a.RightsHolder = trimmed(patch.RightsHolder)
	}
	if patch.License != nil {
		a.License = strings.TrimSpace(*patch.License)
		if a.License == "" {
			a.License = models.DefaultLicense
		}
	}
	if a.VisibilityGroups == nil {
		a.VisibilityGroups = []int64{}
	}
	return checkAttribute(a)
}

// Delete removes a post with everything it owns. Rows go in one
// transaction; stored files are removed once the rows are gone.
func (s *Posts) Delete(ctx context.Context, postID int64, caller *auth.Identity) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	p, err := store.NewPostStore(s.db).FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return notFound("post")
	}
	if !canModify(caller, p.UserID) {
		return fmt.Errorf("%w: not your post", ErrPermission)
	}

	var files []models.Upload
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		files, err = purgePost(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return err
	}

	removePostFiles(ctx, s.sink, files)
	slog.Info("post deleted", "post_id", p.ID, "user_id", caller.UserID)
	s.invalidate(ctx, p.ID)
	return nil
}

// purgePost deletes the rows of one post in dependency order and returns
// the upload rows it removed so their files can be deleted afterwards.
func purgePost(ctx context.Context, tx store.DBTX, postID int64) ([]models.Upload, error) {
	uploads := store.NewUploadStore(tx)
	files, err := uploads.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := store.NewEngagementStore(tx).DeleteByPost(ctx, postID); err != nil {
		return nil, err
	}
	if err := store.NewCommentStore(tx).DeleteByPost(ctx, postID); err != nil {
		return nil, err
	}
	if err := store.NewTagStore(tx).DeleteByPost(ctx, postID); err != nil {
		return nil, err
	}
	if err := uploads.DeleteByPost(ctx, postID); err != nil {
		return nil, err
	}
	if err := store.NewAttributeStore(tx).DeleteByPost(ctx, postID); err != nil {
		return nil, err
	}
	if err := store.NewPostStore(tx).Delete(ctx, postID); err != nil {
		return nil, err
	}
	return files, nil
}

// removePostFiles deletes the files behind upload rows. Only upload rows
// are trusted: thumbnail and link URLs are client input and may point at
// files owned by someone else. It returns how many files were removed.
func removePostFiles(ctx context.Context, sink *storage.Sink, files []models.Upload) int64 {
	var n int64
	for _, u := range files {
		if removeFile(ctx, sink, u.URL, u.Meta.Backend, u.Meta.Key) {
			n++
		}
	}
	return n
}

// PublishScheduled publishes every scheduled post whose time has passed.
func (s *Posts) PublishScheduled(ctx context.Context) (int64, error) {
	n, err := store.NewPostStore(s.db).PublishDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("scheduled posts published", "count", n)
		s.invalidate(ctx, 0)
	}
	return n, nil
}

func (s *Posts) invalidate(ctx context.Context, deletedID int64) {
	s.cache.Invalidate(ctx, cache.PinnedKey)
	if deletedID != 0 {
		s.counters.InvalidatePost(ctx, deletedID)
	}
}

func checkAttachments(c models.Content, files []File, multipart bool) error {
	count := func(fields ...string) int {
		n := 0
		for _, f := range files {
			for _, field := range fields {
				if f.Field == field {
					n++
				}
			}
		}
		return n
	}

	switch c := c.(type) {
	case models.VideoContent:
		if count(FieldVideoFile) == 0 && (c.VideoURL == nil || strings.TrimSpace(*c.VideoURL) == "") {
			return invalid("video posts need a videoFile or content.videoUrl")
		}
	case models.PhotoContent:
		if multipart && count(FieldImageFiles) == 0 {
			return invalid("photo posts need at least one of imageFiles")
		}
	case models.AudioContent:
		if multipart && count(FieldAudioFile) == 0 {
			return invalid("audio posts need an audioFile")
		}
	case models.FileContent:
		if multipart && count(FieldFiles) == 0 {
			return invalid("file posts need at least one of files")
		}
	}
	return nil
}

func checkAttribute(a *models.PostAttribute) error {
	if !a.Status.Valid() {
		return invalid("invalid status %q", a.Status)
	}
	if !a.Visibility.Valid() {
		return invalid("invalid visibility %q", a.Visibility)
	}
	return nil
}

// scheduleLayouts are the accepted scheduledDate formats. Dates without
// a zone are taken as UTC.
var scheduleLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseSchedule parses a scheduled date. An empty string clears it.
func parseSchedule(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, invalid("invalid scheduledDate %q: use RFC 3339, e.g. 2026-01-02T15:04:05Z", s)
}

// normalizeTags trims names and drops empty and duplicate ones.
func normalizeTags(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func slugBase(explicit, title string) string {
	base := slug.Generate(explicit)
	if base == "" {
		base = slug.Generate(title)
	}
	if base == "" {
		base = "post"
	}
	return base
}

// uniquePostURL finds a url that no other post uses, either as its url
// or as its attribute slug.
func uniquePostURL(ctx context.Context, db store.DBTX, explicit, title string, excludeID int64) (string, error) {
	posts := store.NewPostStore(db)
	attrs := store.NewAttributeStore(db)
	return slug.Unique(ctx, slugBase(explicit, title), func(ctx context.Context, candidate string) (bool, error) {
		taken, err := posts.URLExists(ctx, candidate, excludeID)
		if err != nil || taken {
			return taken, err
		}
		return attrs.SlugExists(ctx, candidate, excludeID)
	})
}

// findOrCreateCategory returns the id of the category named name,
// matched case-insensitively, creating it when missing.
func findOrCreateCategory(ctx context.Context, db store.DBTX, name string, userID int64) (int64, error) {
	name = strings.TrimSpace(name)
	cats := store.NewCategoryStore(db)
	c, err := cats.FindByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if c != nil {
		return c.ID, nil
	}

	created, err := createCategory(ctx, cats, &models.Category{Name: name, DisplayOrder: -1, IsListed: true, UserID: &userID})
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

func conflictOnUnique(err error, msg string) error {
	if store.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	}
	return err
}
