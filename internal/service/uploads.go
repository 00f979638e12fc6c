// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"featherpress/internal/models"
	"featherpress/internal/storage"
	"featherpress/internal/store"
)

// OrphanMaxAge is how old an unattached upload must be before the
// scheduled sweep removes it.
const OrphanMaxAge = 24 * time.Hour

// RecentUploadWindow is the window counted as recent in upload stats.
const RecentUploadWindow = 30 * 24 * time.Hour

// OrphanScope selects which unattached uploads a cleanup removes.
type OrphanScope struct {
	OlderThan time.Duration
	// Standalone includes media-library uploads made through the admin
	// surface. Without it only uploads left behind by post writes go.
	Standalone bool
}

// ScheduledOrphanScope is what the nightly job sweeps: non-standalone
// orphans older than OrphanMaxAge.
var ScheduledOrphanScope = OrphanScope{OlderThan: OrphanMaxAge}

// UploadPatch renames an upload or corrects its MIME type.
type UploadPatch struct {
	Filename *string `json:"fileName" validate:"omitempty,max=255"`
	MimeType *string `json:"mimeType" validate:"omitempty,max=100"`
}

// UploadQuery selects a page of the admin upload listing.
type UploadQuery struct {
	Kind        string
	OrphansOnly bool
	Page        int
	Limit       int
}

// UploadList is one page of uploads.
type UploadList struct {
	Uploads []models.Upload `json:"uploads"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Pages   int             `json:"pages"`
}

// CleanupResult reports an orphan sweep.
type CleanupResult struct {
	Rows  int64 `json:"deleted"`
	Files int64 `json:"files"`
}

// Uploads manages stored files outside the post flow.
type Uploads struct {
	db   *sql.DB
	sink *storage.Sink
}

// NewUploads creates the upload service.
func NewUploads(db *sql.DB, sink *storage.Sink) *Uploads {
	return &Uploads{db: db, sink: sink}
}

// List returns one page of uploads, newest first.
func (s *Uploads) List(ctx context.Context, q UploadQuery) (*UploadList, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	kind := models.UploadKind(q.Kind)
	if kind != "" && !kind.Valid() {
		return nil, invalid("invalid upload type %q", q.Kind)
	}
	items, total, err := store.NewUploadStore(s.db).List(ctx, store.UploadFilter{
		Kind:        kind,
		OrphansOnly: q.OrphansOnly,
		Page:        store.Page{Page: page, Limit: limit},
	})
	if err != nil {
		return nil, err
	}
	return &UploadList{Uploads: items, Total: total, Page: page, Limit: limit, Pages: pages(total, limit)}, nil
}

// Upload stores a media-library file that belongs to no post. Its kind
// follows the MIME type of the filename.
func (s *Uploads) Upload(ctx context.Context, filename string, data []byte, userID int64) (*models.Upload, error) {
	if filename == "" || len(data) == 0 {
		return nil, invalid("file is required")
	}
	if s.sink == nil {
		return nil, fmt.Errorf("%w: no storage configured", ErrStorage)
	}
	mimeType := storage.MimeType(filename)
	kind := models.UploadKindForMIME(mimeType)

	obj, err := s.sink.Save(ctx, filename, data, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	u := &models.Upload{
		URL:        obj.URL,
		Kind:       kind,
		Filename:   filename,
		Size:       obj.Size,
		MimeType:   obj.MimeType,
		UserID:     userID,
		Standalone: true,
		Meta:       obj.Meta(),
	}
	if err := store.NewUploadStore(s.db).Create(ctx, u); err != nil {
		removeFile(ctx, s.sink, obj.URL, obj.Backend, obj.Key)
		return nil, err
	}
	slog.Info("file uploaded", "upload_id", u.ID, "type", kind, "backend", obj.Backend)
	return u, nil
}

// Get returns one upload with its uploader's username and the post it
// is attached to, if any.
func (s *Uploads) Get(ctx context.Context, id int64) (*models.UploadDetail, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &models.UploadDetail{Upload: *u}

	user, err := store.NewUserStore(s.db).FindByID(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		d.Uploader = user.Username
	}
	if u.PostID != nil {
		p, err := store.NewPostStore(s.db).FindByID(ctx, *u.PostID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			d.LinkedPost = &models.LinkedPost{ID: p.ID, Title: p.Title, Type: p.Type}
		}
	}
	return d, nil
}

// Stats summarises stored uploads.
func (s *Uploads) Stats(ctx context.Context) (*models.UploadStats, error) {
	st, err := store.NewUploadStore(s.db).Stats(ctx, time.Now().Add(-RecentUploadWindow))
	if err != nil {
		return nil, err
	}
	st.Storage = humanize.IBytes(uint64(st.StorageBytes))
	return st, nil
}

// Update renames an upload or sets its MIME type. The stored file and
// its kind are unchanged.
func (s *Uploads) Update(ctx context.Context, id int64, patch UploadPatch) (*models.Upload, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Filename != nil {
		name := strings.TrimSpace(*patch.Filename)
		if name == "" {
			return nil, invalid("fileName cannot be empty")
		}
		u.Filename = name
	}
	if patch.MimeType != nil {
		mt := strings.ToLower(strings.TrimSpace(*patch.MimeType))
		if _, _, err := mime.ParseMediaType(mt); err != nil {
			return nil, invalid("invalid mimeType %q", *patch.MimeType)
		}
		u.MimeType = mt
	}
	if err := store.NewUploadStore(s.db).UpdateInfo(ctx, u.ID, u.Filename, u.MimeType); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Uploads) find(ctx context.Context, id int64) (*models.Upload, error) {
	u, err := store.NewUploadStore(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("upload")
	}
	return u, nil
}

// Delete removes one orphaned upload and its file. Uploads attached to a
// post go away with the post.
func (s *Uploads) Delete(ctx context.Context, id int64) error {
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !u.IsOrphan() {
		return invalid("upload is attached to post %d; delete the post first", *u.PostID)
	}
	if err := store.NewUploadStore(s.db).Delete(ctx, id); err != nil {
		return err
	}
	removeFile(ctx, s.sink, u.URL, u.Meta.Backend, u.Meta.Key)
	return nil
}

// CleanupOrphans deletes the unattached uploads selected by scope along
// with their files.
func (s *Uploads) CleanupOrphans(ctx context.Context, scope OrphanScope) (*CleanupResult, error) {
	uploads := store.NewUploadStore(s.db)
	orphans, err := uploads.OrphansBefore(ctx, time.Now().Add(-scope.OlderThan), scope.Standalone)
	if err != nil {
		return nil, err
	}
	if len(orphans) == 0 {
		return &CleanupResult{}, nil
	}

	ids := make([]int64, len(orphans))
	for i, u := range orphans {
		ids[i] = u.ID
	}
	rows, err := uploads.DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	res := &CleanupResult{Rows: rows, Files: removePostFiles(ctx, s.sink, orphans)}
	slog.Info("orphan uploads removed", "rows", res.Rows, "files", res.Files)
	return res, nil
}
