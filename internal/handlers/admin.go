// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"featherpress/internal/service"
)

// Admin groups the admin-only handlers and their services. Comment and
// spam moderation live on Comments.
type Admin struct {
	users     *service.Users
	taxonomy  *service.Taxonomy
	uploads   *service.Uploads
	site      *service.Site
	maxUpload int64
}

// NewAdmin creates the admin handlers. maxUpload bounds an upload body.
func NewAdmin(users *service.Users, taxonomy *service.Taxonomy, uploads *service.Uploads, site *service.Site, maxUpload int64) *Admin {
	return &Admin{users: users, taxonomy: taxonomy, uploads: uploads, site: site, maxUpload: maxUpload}
}

// --- Users ---

// UsersList serves GET /admin/users?page&limit&search&group_id.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	groupID, err := queryInt64(r, "group_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.users.List(r.Context(), service.UserQuery{
		Search:  r.URL.Query().Get("search"),
		GroupID: groupID,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UserGet serves GET /admin/users/{id}.
func (a *Admin) UserGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UserCreate serves POST /admin/users.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	var in service.NewUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// UserUpdate serves PUT /admin/users/{id}.
func (a *Admin) UserUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch service.UserPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.users.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UserDelete serves DELETE /admin/users/{id} and reports what went with
// the user.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.users.Delete(r.Context(), id, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "user deleted", "deleted": res})
}

// --- Groups ---

// GroupsList serves GET /admin/groups.
func (a *Admin) GroupsList(w http.ResponseWriter, r *http.Request) {
	groups, err := a.users.ListGroups(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// GroupGet serves GET /admin/groups/{id}.
func (a *Admin) GroupGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := a.users.GetGroup(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// GroupCreate serves POST /admin/groups.
func (a *Admin) GroupCreate(w http.ResponseWriter, r *http.Request) {
	var in service.GroupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := a.users.CreateGroup(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// GroupUpdate serves PUT /admin/groups/{id}.
func (a *Admin) GroupUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.GroupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := a.users.UpdateGroup(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// GroupDelete serves DELETE /admin/groups/{id}.
func (a *Admin) GroupDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.users.DeleteGroup(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "group deleted")
}
