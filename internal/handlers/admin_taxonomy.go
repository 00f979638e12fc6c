// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"featherpress/internal/service"
	"featherpress/internal/store"
)

// --- Categories ---

// CategoriesList serves GET /admin/categories, unlisted ones included.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	cats, err := a.taxonomy.Categories(r.Context(), false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// CategoryCreate serves POST /admin/categories.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.taxonomy.CreateCategory(r.Context(), in, caller(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CategoryGet serves GET /admin/categories/{id}.
func (a *Admin) CategoryGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.taxonomy.Category(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CategoriesSearch serves GET /admin/categories/search?q.
func (a *Admin) CategoriesSearch(w http.ResponseWriter, r *http.Request) {
	items, err := a.taxonomy.SearchCategories(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CategoryUpdate serves PUT /admin/categories/{id}.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.taxonomy.UpdateCategory(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CategoryToggle serves POST /admin/categories/{id}/toggle.
func (a *Admin) CategoryToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.taxonomy.ToggleCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CategoriesReorder serves PUT /admin/categories/reorder with a body of
// [{id, display_order}].
func (a *Admin) CategoriesReorder(w http.ResponseWriter, r *http.Request) {
	var items []store.ReorderItem
	if err := decodeJSON(w, r, &items); err != nil {
		writeError(w, r, err)
		return
	}
	for i := range items {
		if err := check(&items[i]); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := a.taxonomy.ReorderCategories(r.Context(), items); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "categories reordered")
}

// CategoryDelete serves DELETE /admin/categories/{id}.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.taxonomy.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "category deleted")
}

// CategoriesDelete serves POST /admin/categories/bulk-delete.
func (a *Admin) CategoriesDelete(w http.ResponseWriter, r *http.Request) {
	var req idList
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := a.taxonomy.DeleteCategories(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// CategoryStats serves GET /admin/categories/stats.
func (a *Admin) CategoryStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.taxonomy.CategoryStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// --- Tags ---

// TagsList serves GET /admin/tags.
func (a *Admin) TagsList(w http.ResponseWriter, r *http.Request) {
	tags, err := a.taxonomy.Tags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

type renameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// TagStats serves GET /admin/tags/stats.
func (a *Admin) TagStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.taxonomy.TagStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// TagRename serves PUT /admin/tags/{name}.
func (a *Admin) TagRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := a.taxonomy.RenameTag(r.Context(), chi.URLParam(r, "name"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// TagDelete serves DELETE /admin/tags/{name}.
func (a *Admin) TagDelete(w http.ResponseWriter, r *http.Request) {
	n, err := a.taxonomy.DeleteTag(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// TagPosts serves GET /admin/tags/{name}/posts.
func (a *Admin) TagPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.taxonomy.TagPosts(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// TagStatus serves PUT /admin/tags/{name}/status.
func (a *Admin) TagStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := a.taxonomy.SetTagStatus(r.Context(), chi.URLParam(r, "name"), service.TagStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}
