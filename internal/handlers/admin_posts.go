// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"featherpress/internal/service"
)

// AdminList serves GET /admin/posts?status&type&user_id&search&page&limit.
func (h *Posts) AdminList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := h.feed.AdminList(r.Context(), service.AdminPostQuery{
		Status: q.Get("status"),
		Type:   q.Get("type"),
		UserID: userID,
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AdminGet serves GET /admin/posts/{id}. Drafts and private posts of any
// author are returned.
func (h *Posts) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.feed.AdminGet(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AdminStats serves GET /admin/posts/stats.
func (h *Posts) AdminStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.feed.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
