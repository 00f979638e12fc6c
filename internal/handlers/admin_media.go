// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"featherpress/internal/service"
)

// UploadsList serves GET /admin/uploads?type&orphans&page&limit.
func (a *Admin) UploadsList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := a.uploads.List(r.Context(), service.UploadQuery{
		Kind:        q.Get("type"),
		OrphansOnly: q.Get("orphans") == "true" || q.Get("orphans") == "1",
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UploadCreate serves POST /admin/uploads with a single "file" part.
func (a *Admin) UploadCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload+1024)
	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, fmt.Errorf("%w: upload exceeds %d MB", service.ErrValidation, a.maxUpload>>20))
			return
		}
		writeError(w, r, fmt.Errorf("%w: invalid multipart body: %v", service.ErrValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: file is required", service.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: read file: %v", service.ErrValidation, err))
		return
	}
	if len(data) == 0 {
		writeError(w, r, fmt.Errorf("%w: file is empty", service.ErrValidation))
		return
	}

	up, err := a.uploads.Upload(r.Context(), header.Filename, data, caller(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

// UploadDelete serves DELETE /admin/uploads/{id}.
func (a *Admin) UploadDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.uploads.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "upload deleted")
}

// UploadGet serves GET /admin/uploads/{id}.
func (a *Admin) UploadGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := a.uploads.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// UploadUpdate serves PUT /admin/uploads/{id} {fileName?, mimeType?}.
func (a *Admin) UploadUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.UploadPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.uploads.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UploadsStats serves GET /admin/uploads/stats.
func (a *Admin) UploadsStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.uploads.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// UploadsCleanup serves POST /admin/uploads/cleanup. Every orphan left by
// post writes goes; ?standalone=true also empties the media library.
func (a *Admin) UploadsCleanup(w http.ResponseWriter, r *http.Request) {
	standalone := r.URL.Query().Get("standalone")
	res, err := a.uploads.CleanupOrphans(r.Context(), service.OrphanScope{
		Standalone: standalone == "true" || standalone == "1",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
