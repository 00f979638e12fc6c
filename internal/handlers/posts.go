// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/goccy/go-json"

	"featherpress/internal/middleware"
	"featherpress/internal/service"
)

// attachmentFields are the multipart file parts of a post, in the order
// they are stored.
var attachmentFields = []string{
	service.FieldImageFiles,
	service.FieldVideoFile,
	service.FieldAudioFile,
	service.FieldFiles,
	service.FieldPosterImage,
	service.FieldCaptionFile,
	service.FieldCaptionFiles,
}

// Posts serves the post, feed and engagement endpoints.
type Posts struct {
	posts      *service.Posts
	feed       *service.Feed
	engagement *service.Engagement
	maxUpload  int64
}

// NewPosts creates the post handlers. maxUpload bounds a multipart body.
func NewPosts(posts *service.Posts, feed *service.Feed, engagement *service.Engagement, maxUpload int64) *Posts {
	return &Posts{posts: posts, feed: feed, engagement: engagement, maxUpload: maxUpload}
}

// Feed serves GET /posts/feed?limit&cursor&search.
func (h *Posts) Feed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	page, err := h.feed.Page(r.Context(), limit, q.Get("cursor"), q.Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Pinned serves GET /posts/pinned.
func (h *Posts) Pinned(w http.ResponseWriter, r *http.Request) {
	views, err := h.feed.Pinned(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Mine serves GET /posts/mine.
func (h *Posts) Mine(w http.ResponseWriter, r *http.Request) {
	views, err := h.feed.Mine(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Get serves GET /posts/{id}.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.feed.Get(r.Context(), id, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Create serves POST /posts. A multipart body carries the post JSON in
// its "data" part and attachments in the file parts; anything else is
// read as a JSON body.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = h.readMultipart(w, r, &in)
	} else {
		err = decodeJSON(w, r, &in)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.posts.Create(r.Context(), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Posts) readMultipart(w http.ResponseWriter, r *http.Request, in *service.PostInput) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: upload exceeds %d MB", service.ErrValidation, h.maxUpload>>20)
		}
		return fmt.Errorf("%w: invalid multipart body: %v", service.ErrValidation, err)
	}
	defer r.MultipartForm.RemoveAll()

	data := r.FormValue("data")
	if data == "" {
		return fmt.Errorf("%w: data part is required", service.ErrValidation)
	}
	if err := json.Unmarshal([]byte(data), in); err != nil {
		return fmt.Errorf("%w: invalid data part: %v", service.ErrValidation, err)
	}
	in.Multipart = true

	for _, field := range attachmentFields {
		for _, fh := range r.MultipartForm.File[field] {
			f, err := fh.Open()
			if err != nil {
				return fmt.Errorf("%w: read %s: %v", service.ErrValidation, field, err)
			}
			b, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%w: read %s: %v", service.ErrValidation, field, err)
			}
			in.Files = append(in.Files, service.File{Field: field, Filename: fh.Filename, Data: b})
		}
	}
	return nil
}

// Update serves PUT /posts/{id}.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch service.PostPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.posts.Update(r.Context(), id, patch, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Delete serves DELETE /posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.posts.Delete(r.Context(), id, caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "post deleted")
}

type postRef struct {
	PostID int64 `json:"post_id" validate:"required,gt=0"`
}

type shareRequest struct {
	PostID   int64  `json:"post_id" validate:"required,gt=0"`
	Platform string `json:"platform" validate:"required,max=50"`
}

// Like serves POST /posts/like.
func (h *Posts) Like(w http.ResponseWriter, r *http.Request) {
	var req postRef
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.engagement.ToggleLike(r.Context(), req.PostID, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LikeStatus serves GET /posts/like/status?post_id.
func (h *Posts) LikeStatus(w http.ResponseWriter, r *http.Request) {
	postID, err := queryInt64(r, "post_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.engagement.LikeStatus(r.Context(), postID, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// View serves POST /posts/view. Anonymous views are keyed by client IP.
func (h *Posts) View(w http.ResponseWriter, r *http.Request) {
	var req postRef
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.engagement.RecordView(r.Context(), req.PostID, caller(r), middleware.ClientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Share serves POST /posts/share.
func (h *Posts) Share(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.engagement.RecordShare(r.Context(), req.PostID, req.Platform, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
