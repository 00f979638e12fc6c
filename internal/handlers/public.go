// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"featherpress/internal/service"
)

// Public serves the anonymous taxonomy and settings reads.
type Public struct {
	taxonomy *service.Taxonomy
	site     *service.Site
}

// NewPublic creates the public handlers.
func NewPublic(taxonomy *service.Taxonomy, site *service.Site) *Public {
	return &Public{taxonomy: taxonomy, site: site}
}

// Categories serves GET /categories: listed categories by display order.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := p.taxonomy.Categories(r.Context(), true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// Tags serves GET /tags.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := p.taxonomy.Tags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// PopularTags serves GET /tags/popular?limit.
func (p *Public) PopularTags(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := p.taxonomy.PopularTags(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// Settings serves GET /settings. Sensitive values are only shown to admins.
func (p *Public) Settings(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	settings, err := p.site.PublicSettings(r.Context(), id != nil && id.Role.CanManage())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
