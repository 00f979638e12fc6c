// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"featherpress/internal/middleware"
	"featherpress/internal/models"
	"featherpress/internal/service"
)

// Comments serves the public comment endpoints and the admin comment
// and spam moderation views.
type Comments struct {
	comments *service.Comments
}

// NewComments creates the comment handlers.
func NewComments(comments *service.Comments) *Comments {
	return &Comments{comments: comments}
}

// ForPost serves GET /comments?post_id&page&limit.
func (h *Comments) ForPost(w http.ResponseWriter, r *http.Request) {
	postID, err := queryInt64(r, "post_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if postID <= 0 {
		writeError(w, r, fmt.Errorf("%w: post_id is required", service.ErrValidation))
		return
	}
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.comments.ForPost(r.Context(), postID, page, limit, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Create serves POST /comments. Anonymous comments are allowed.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.IP = middleware.ClientIP(r)
	in.UserAgent = r.UserAgent()

	c, err := h.comments.Create(r.Context(), in, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

type commentBody struct {
	Body string `json:"body" validate:"required"`
}

// Edit serves PATCH /comments/{id}.
func (h *Comments) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req commentBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.comments.Edit(r.Context(), id, req.Body, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete serves DELETE /comments/{id} and DELETE /admin/comments/{id}.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.comments.Delete(r.Context(), id, caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "comment deleted")
}

// commentQuery reads the admin listing filters. status may repeat or be
// comma separated.
func commentQuery(r *http.Request) (service.CommentQuery, error) {
	q := r.URL.Query()
	page, limit, err := pageParams(r)
	if err != nil {
		return service.CommentQuery{}, err
	}
	postID, err := queryInt64(r, "post_id")
	if err != nil {
		return service.CommentQuery{}, err
	}
	var statuses []string
	for _, s := range q["status"] {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				statuses = append(statuses, part)
			}
		}
	}
	return service.CommentQuery{
		Status:   statuses,
		Search:   q.Get("search"),
		Author:   q.Get("author"),
		PostID:   postID,
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		SortBy:   q.Get("sort_by"),
		Order:    q.Get("order"),
		Page:     page,
		Limit:    limit,
	}, nil
}

// List serves GET /admin/comments.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	q, err := commentQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.comments.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Grouped serves GET /admin/comments/by-post.
func (h *Comments) Grouped(w http.ResponseWriter, r *http.Request) {
	q, err := commentQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.comments.Grouped(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stats serves GET /admin/comments/stats.
func (h *Comments) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.comments.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus serves PUT /admin/comments/{id}/status.
func (h *Comments) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.comments.SetStatus(r.Context(), id, models.CommentStatus(req.Status)); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "comment status updated")
}

type batchRequest struct {
	CommentIDs []int64 `json:"comment_ids" validate:"required,min=1,dive,gt=0"`
	Action     string  `json:"action" validate:"required"`
}

// Batch serves POST /admin/comments/batch.
func (h *Comments) Batch(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, false)
}

// SpamBatch serves POST /admin/spam/batch.
func (h *Comments) SpamBatch(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, true)
}

func (h *Comments) batch(w http.ResponseWriter, r *http.Request, spamView bool) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.comments.Batch(r.Context(), req.CommentIDs, req.Action, spamView)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

// SpamList serves GET /admin/spam.
func (h *Comments) SpamList(w http.ResponseWriter, r *http.Request) {
	q, err := commentQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.comments.SpamList(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SpamStats serves GET /admin/spam/stats.
func (h *Comments) SpamStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.comments.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.SpamView())
}

// SetSpamStatus serves PUT /admin/spam/{id}/status.
func (h *Comments) SetSpamStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.comments.SetSpamStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "comment status updated")
}

// MarkSpam serves POST /admin/spam/mark/{id}.
func (h *Comments) MarkSpam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.comments.SetStatus(r.Context(), id, models.CommentSpam); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "comment marked as spam")
}
