// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"featherpress/internal/models"
)

// SettingStore manages typed site settings in the database.
type SettingStore struct {
	db DBTX
}

// NewSettingStore returns a new SettingStore backed by the given database.
func NewSettingStore(db DBTX) *SettingStore {
	return &SettingStore{db: db}
}

const settingColumns = `id, name, value, type, description`

func scanSetting(row scanner) (*models.Setting, error) {
	var st models.Setting
	if err := row.Scan(&st.ID, &st.Name, &st.Value, &st.Type, &st.Description); err != nil {
		return nil, err
	}
	return &st, nil
}

// List returns every setting ordered by name.
func (s *SettingStore) List(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+settingColumns+` FROM settings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	items := []models.Setting{}
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		items = append(items, *st)
	}
	return items, rows.Err()
}

// Get returns a setting by name. Returns nil if not found.
func (s *SettingStore) Get(ctx context.Context, name string) (*models.Setting, error) {
	st, err := scanSetting(s.db.QueryRowContext(ctx, `SELECT `+settingColumns+` FROM settings WHERE name = $1`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return st, nil
}

// Upsert creates or replaces a setting by name. A nil description keeps
// the stored one.
func (s *SettingStore) Upsert(ctx context.Context, st *models.Setting) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO settings (name, value, type, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			type = EXCLUDED.type,
			description = COALESCE(EXCLUDED.description, settings.description)
		RETURNING id, description
	`, st.Name, st.Value, st.Type, st.Description).Scan(&st.ID, &st.Description)
	if err != nil {
		return fmt.Errorf("upsert setting %q: %w", st.Name, err)
	}
	return nil
}

// Delete removes a setting. Returns false if it did not exist.
func (s *SettingStore) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("delete setting: %w", err)
	}
	return rowsAffected(res) > 0, nil
}
