// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// RegistryStatus is the toggle state of a module or feather.
type RegistryStatus string

const (
	StatusEnabled  RegistryStatus = "enabled"
	StatusDisabled RegistryStatus = "disabled"
)

// Module is a toggleable named capability. It is a registry row only.
type Module struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Description  *string        `json:"description,omitempty"`
	Status       RegistryStatus `json:"status"`
	CanDisable   bool           `json:"canDisable"`
	CanUninstall bool           `json:"canUninstall"`
	Conflicts    []string       `json:"conflicts"`
}

// Feather is a post-format registry row.
type Feather struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Status      RegistryStatus `json:"status"`
	CanDisable  bool           `json:"canDisable"`
}

// Theme is a registry row. IsActive is computed from the active_theme table.
type Theme struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
}
