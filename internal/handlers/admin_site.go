// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"featherpress/internal/service"
)

// --- Settings ---

// SettingsList serves GET /admin/settings.
func (a *Admin) SettingsList(w http.ResponseWriter, r *http.Request) {
	settings, err := a.site.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SettingGet serves GET /admin/settings/{name}.
func (a *Admin) SettingGet(w http.ResponseWriter, r *http.Request) {
	s, err := a.site.Setting(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SettingsPut serves PUT /admin/settings with a {name: {value, type}} map.
func (a *Admin) SettingsPut(w http.ResponseWriter, r *http.Request) {
	var in map[string]service.SettingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := a.site.PutSettings(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// SettingPut serves PUT /admin/settings/{name}.
func (a *Admin) SettingPut(w http.ResponseWriter, r *http.Request) {
	var in service.SettingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := a.site.PutSetting(r.Context(), chi.URLParam(r, "name"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SettingDelete serves DELETE /admin/settings/{name}.
func (a *Admin) SettingDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.site.DeleteSetting(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "setting deleted")
}

// --- Extensions ---

// ModulesList serves GET /admin/modules.
func (a *Admin) ModulesList(w http.ResponseWriter, r *http.Request) {
	mods, err := a.site.Modules(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mods)
}

// ModuleToggle serves POST /admin/modules/{id}/toggle.
func (a *Admin) ModuleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := a.site.ToggleModule(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ModuleDelete serves DELETE /admin/modules/{id}.
func (a *Admin) ModuleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.site.UninstallModule(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "module uninstalled")
}

// FeathersList serves GET /admin/feathers.
func (a *Admin) FeathersList(w http.ResponseWriter, r *http.Request) {
	feathers, err := a.site.Feathers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feathers)
}

// FeatherToggle serves POST /admin/feathers/{id}/toggle.
func (a *Admin) FeatherToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := a.site.ToggleFeather(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// ThemesList serves GET /admin/themes.
func (a *Admin) ThemesList(w http.ResponseWriter, r *http.Request) {
	themes, err := a.site.Themes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

// ThemeActivate serves POST /admin/themes/{id}/activate.
func (a *Admin) ThemeActivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := a.site.ActivateTheme(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
