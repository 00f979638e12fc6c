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

// GroupStore handles permission groups.
type GroupStore struct {
	db DBTX
}

// NewGroupStore creates a new GroupStore.
func NewGroupStore(db DBTX) *GroupStore {
	return &GroupStore{db: db}
}

const groupSelect = `SELECT g.id, g.name, g.description, g.permissions,
	(SELECT COUNT(*) FROM users u WHERE u.group_id = g.id)
FROM groups g`

func scanGroup(row scanner) (*models.Group, error) {
	var g models.Group
	var perms []byte
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &perms, &g.UserCount); err != nil {
		return nil, err
	}
	g.Permissions = []string{}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &g.Permissions); err != nil {
			return nil, fmt.Errorf("decode group permissions: %w", err)
		}
	}
	return &g, nil
}

// List returns every group with its user count.
func (s *GroupStore) List(ctx context.Context) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx, groupSelect+` ORDER BY g.id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// FindByID retrieves a group. Returns nil if not found.
func (s *GroupStore) FindByID(ctx context.Context, id int64) (*models.Group, error) {
	g, err := scanGroup(s.db.QueryRowContext(ctx, groupSelect+` WHERE g.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find group by id: %w", err)
	}
	return g, nil
}

// Create inserts a group and sets g.ID.
func (s *GroupStore) Create(ctx context.Context, g *models.Group) error {
	perms, err := permissionsJSON(g.Permissions)
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO groups (name, description, permissions) VALUES ($1, $2, $3::jsonb)
		RETURNING id
	`, g.Name, g.Description, perms).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update writes name, description and permissions of g.
func (s *GroupStore) Update(ctx context.Context, g *models.Group) error {
	perms, err := permissionsJSON(g.Permissions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE groups SET name = $1, description = $2, permissions = $3::jsonb WHERE id = $4
	`, g.Name, g.Description, perms, g.ID)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete removes a group.
func (s *GroupStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

func permissionsJSON(perms []string) (string, error) {
	if perms == nil {
		perms = []string{}
	}
	s, err := jsonText(perms)
	if err != nil {
		return "", fmt.Errorf("encode permissions: %w", err)
	}
	return s, nil
}
