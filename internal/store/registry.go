// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"featherpress/internal/models"
)

// RegistryStore handles the module, feather and theme registries.
type RegistryStore struct {
	db DBTX
}

// NewRegistryStore creates a new RegistryStore.
func NewRegistryStore(db DBTX) *RegistryStore {
	return &RegistryStore{db: db}
}

const moduleColumns = `id, name, description, status, can_disable, can_uninstall, conflicts`

func scanModule(row scanner) (*models.Module, error) {
	var m models.Module
	var conflicts []byte
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Status, &m.CanDisable, &m.CanUninstall, &conflicts)
	if err != nil {
		return nil, err
	}
	m.Conflicts = []string{}
	if len(conflicts) > 0 {
		if err := json.Unmarshal(conflicts, &m.Conflicts); err != nil {
			return nil, fmt.Errorf("decode module conflicts: %w", err)
		}
	}
	return &m, nil
}

// ListModules returns every module ordered by name.
func (s *RegistryStore) ListModules(ctx context.Context) ([]models.Module, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	items := []models.Module{}
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// FindModule retrieves a module. Returns nil if not found.
func (s *RegistryStore) FindModule(ctx context.Context, id int64) (*models.Module, error) {
	m, err := scanModule(s.db.QueryRowContext(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find module: %w", err)
	}
	return m, nil
}

// SetModuleStatus changes a module's status.
func (s *RegistryStore) SetModuleStatus(ctx context.Context, id int64, status models.RegistryStatus) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE modules SET status = $1 WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("set module status: %w", err)
	}
	return nil
}

// DeleteModule removes a module row.
func (s *RegistryStore) DeleteModule(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	return nil
}

const featherColumns = `id, name, description, status, can_disable`

func scanFeather(row scanner) (*models.Feather, error) {
	var f models.Feather
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Status, &f.CanDisable); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFeathers returns every feather ordered by id.
func (s *RegistryStore) ListFeathers(ctx context.Context) ([]models.Feather, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+featherColumns+` FROM feathers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list feathers: %w", err)
	}
	defer rows.Close()

	items := []models.Feather{}
	for rows.Next() {
		f, err := scanFeather(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feather: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// FindFeather retrieves a feather. Returns nil if not found.
func (s *RegistryStore) FindFeather(ctx context.Context, id int64) (*models.Feather, error) {
	f, err := scanFeather(s.db.QueryRowContext(ctx, `SELECT `+featherColumns+` FROM feathers WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find feather: %w", err)
	}
	return f, nil
}

// SetFeatherStatus changes a feather's status.
func (s *RegistryStore) SetFeatherStatus(ctx context.Context, id int64, status models.RegistryStatus) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE feathers SET status = $1 WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("set feather status: %w", err)
	}
	return nil
}

const themeSelect = `SELECT t.id, t.name, t.description, (act.theme_id IS NOT NULL)
FROM themes t
LEFT JOIN active_theme act ON act.theme_id = t.id`

func scanTheme(row scanner) (*models.Theme, error) {
	var t models.Theme
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.IsActive); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListThemes returns every theme with its active flag.
func (s *RegistryStore) ListThemes(ctx context.Context) ([]models.Theme, error) {
	rows, err := s.db.QueryContext(ctx, themeSelect+` ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	items := []models.Theme{}
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// FindTheme retrieves a theme. Returns nil if not found.
func (s *RegistryStore) FindTheme(ctx context.Context, id int64) (*models.Theme, error) {
	t, err := scanTheme(s.db.QueryRowContext(ctx, themeSelect+` WHERE t.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find theme: %w", err)
	}
	return t, nil
}

// ActivateTheme makes id the single active theme with one upsert.
func (s *RegistryStore) ActivateTheme(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO active_theme (singleton, theme_id) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET theme_id = EXCLUDED.theme_id
	`, id)
	if err != nil {
		return fmt.Errorf("activate theme: %w", err)
	}
	return nil
}
