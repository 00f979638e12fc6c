// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"featherpress/internal/database"
	"featherpress/internal/models"
	"featherpress/internal/store"
)

// SettingInput is one setting write. Value may be any JSON value; it is
// stored as text and Type is inferred from it when empty.
type SettingInput struct {
	Value       any                `json:"value"`
	Type        models.SettingType `json:"type"`
	Description *string            `json:"description"`
}

// Site manages settings and the module, feather and theme registries.
type Site struct {
	db *sql.DB
}

// NewSite creates the site configuration service.
func NewSite(db *sql.DB) *Site {
	return &Site{db: db}
}

// PublicSettings returns typed setting values keyed by name. Sensitive
// settings are left out unless admin is set.
func (s *Site) PublicSettings(ctx context.Context, admin bool) (map[string]any, error) {
	all, err := store.NewSettingStore(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(all))
	for i := range all {
		if !admin && models.IsSensitiveSetting(all[i].Name) {
			continue
		}
		out[all[i].Name] = all[i].Typed()
	}
	return out, nil
}

// Settings lists every setting row.
func (s *Site) Settings(ctx context.Context) ([]models.Setting, error) {
	return store.NewSettingStore(s.db).List(ctx)
}

// Setting returns one setting by name.
func (s *Site) Setting(ctx context.Context, name string) (*models.Setting, error) {
	st, err := store.NewSettingStore(s.db).Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, notFound("setting")
	}
	return st, nil
}

// PutSetting creates or replaces one setting.
func (s *Site) PutSetting(ctx context.Context, name string, in SettingInput) (*models.Setting, error) {
	st, err := settingFromInput(name, in)
	if err != nil {
		return nil, err
	}
	settings := store.NewSettingStore(s.db)
	if err := settings.Upsert(ctx, st); err != nil {
		return nil, err
	}
	return s.Setting(ctx, st.Name)
}

// PutSettings upserts several settings in one transaction and returns
// how many were written.
func (s *Site) PutSettings(ctx context.Context, in map[string]SettingInput) (int, error) {
	if len(in) == 0 {
		return 0, invalid("no settings given")
	}
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	slices.Sort(names)

	batch := make([]*models.Setting, 0, len(in))
	for _, name := range names {
		st, err := settingFromInput(name, in[name])
		if err != nil {
			return 0, err
		}
		batch = append(batch, st)
	}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		settings := store.NewSettingStore(tx)
		for _, st := range batch {
			if err := settings.Upsert(ctx, st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Info("settings updated", "count", len(batch))
	return len(batch), nil
}

// DeleteSetting removes one setting.
func (s *Site) DeleteSetting(ctx context.Context, name string) error {
	ok, err := store.NewSettingStore(s.db).Delete(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("setting")
	}
	return nil
}

// settingFromInput renders the value as stored text and settles its type.
func settingFromInput(name string, in SettingInput) (*models.Setting, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("setting name is required")
	}
	if in.Type != "" && !in.Type.Valid() {
		return nil, invalid("invalid setting type %q", in.Type)
	}

	st := &models.Setting{Name: name, Type: in.Type, Description: in.Description}
	switch v := in.Value.(type) {
	case nil:
		st.Value = ""
		if st.Type == "" {
			st.Type = models.SettingString
		}
	case string:
		st.Value = v
		if st.Type == "" {
			st.Type = models.SettingString
		}
	case bool:
		st.Value = strconv.FormatBool(v)
		if st.Type == "" {
			st.Type = models.SettingBoolean
		}
	case float64:
		st.Value = strconv.FormatFloat(v, 'f', -1, 64)
		if st.Type == "" {
			st.Type = models.SettingNumber
		}
	case int:
		st.Value = strconv.Itoa(v)
		if st.Type == "" {
			st.Type = models.SettingNumber
		}
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, invalid("setting %s: value is not JSON encodable", name)
		}
		st.Value = string(b)
		if st.Type == "" {
			st.Type = models.SettingJSON
		}
	}
	return st, nil
}

// Modules lists the module registry.
func (s *Site) Modules(ctx context.Context) ([]models.Module, error) {
	return store.NewRegistryStore(s.db).ListModules(ctx)
}

// ToggleModule flips a module between enabled and disabled. A module
// that cannot be disabled stays enabled, and a module is not enabled
// while a conflicting one is.
func (s *Site) ToggleModule(ctx context.Context, id int64) (*models.Module, error) {
	reg := store.NewRegistryStore(s.db)
	m, err := reg.FindModule(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, notFound("module")
	}

	next := models.StatusEnabled
	if m.Status == models.StatusEnabled {
		if !m.CanDisable {
			return nil, fmt.Errorf("%w: module %s cannot be disabled", ErrPermission, m.Name)
		}
		next = models.StatusDisabled
	} else {
		all, err := reg.ListModules(ctx)
		if err != nil {
			return nil, err
		}
		for _, other := range all {
			if other.ID == m.ID || other.Status != models.StatusEnabled {
				continue
			}
			if slices.Contains(m.Conflicts, other.Name) || slices.Contains(other.Conflicts, m.Name) {
				return nil, fmt.Errorf("%w: module %s conflicts with enabled module %s", ErrConflict, m.Name, other.Name)
			}
		}
	}

	if err := reg.SetModuleStatus(ctx, id, next); err != nil {
		return nil, err
	}
	m.Status = next
	slog.Info("module toggled", "module", m.Name, "status", next)
	return m, nil
}

// UninstallModule removes a module from the registry.
func (s *Site) UninstallModule(ctx context.Context, id int64) error {
	reg := store.NewRegistryStore(s.db)
	m, err := reg.FindModule(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return notFound("module")
	}
	if !m.CanUninstall {
		return fmt.Errorf("%w: module %s cannot be uninstalled", ErrPermission, m.Name)
	}
	return reg.DeleteModule(ctx, id)
}

// Feathers lists the feather registry.
func (s *Site) Feathers(ctx context.Context) ([]models.Feather, error) {
	return store.NewRegistryStore(s.db).ListFeathers(ctx)
}

// ToggleFeather flips a feather between enabled and disabled.
func (s *Site) ToggleFeather(ctx context.Context, id int64) (*models.Feather, error) {
	reg := store.NewRegistryStore(s.db)
	f, err := reg.FindFeather(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, notFound("feather")
	}
	next := models.StatusEnabled
	if f.Status == models.StatusEnabled {
		if !f.CanDisable {
			return nil, fmt.Errorf("%w: feather %s cannot be disabled", ErrPermission, f.Name)
		}
		next = models.StatusDisabled
	}
	if err := reg.SetFeatherStatus(ctx, id, next); err != nil {
		return nil, err
	}
	f.Status = next
	return f, nil
}

// Themes lists the themes with the active one flagged.
func (s *Site) Themes(ctx context.Context) ([]models.Theme, error) {
	return store.NewRegistryStore(s.db).ListThemes(ctx)
}

// ActivateTheme makes id the active theme.
func (s *Site) ActivateTheme(ctx context.Context, id int64) (*models.Theme, error) {
	reg := store.NewRegistryStore(s.db)
	th, err := reg.FindTheme(ctx, id)
	if err != nil {
		return nil, err
	}
	if th == nil {
		return nil, notFound("theme")
	}
	if err := reg.ActivateTheme(ctx, id); err != nil {
		return nil, err
	}
	th.IsActive = true
	slog.Info("theme activated", "theme", th.Name)
	return th, nil
}
