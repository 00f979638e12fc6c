// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// SettingType tells readers how to interpret a setting's stored text.
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingBoolean SettingType = "boolean"
	SettingNumber  SettingType = "number"
	SettingJSON    SettingType = "json"
)

// Valid reports whether t is a known setting type.
func (t SettingType) Valid() bool {
	switch t {
	case SettingString, SettingBoolean, SettingNumber, SettingJSON:
		return true
	}
	return false
}

// Setting is a persisted name/value/type triple.
type Setting struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Value       string      `json:"value"`
	Type        SettingType `json:"type"`
	Description *string     `json:"description,omitempty"`
}

// Typed interprets Value according to Type. Values that do not parse are
// returned as the raw string.
func (s *Setting) Typed() any {
	switch s.Type {
	case SettingBoolean:
		switch strings.ToLower(strings.TrimSpace(s.Value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off", "":
			return false
		}
	case SettingNumber:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64); err == nil {
			return f
		}
	case SettingJSON:
		var v any
		if err := json.Unmarshal([]byte(s.Value), &v); err == nil {
			return v
		}
	}
	return s.Value
}

// sensitivePrefixes and sensitiveNames are hidden from non-admin readers.
var (
	sensitivePrefixes = []string{"smtp_", "google_client_"}
	sensitiveNames    = map[string]bool{
		"admin_email":  true,
		"database_url": true,
		"secret_key":   true,
		"jwt_secret":   true,
		"api_keys":     true,
	}
)

// IsSensitiveSetting reports whether a setting must be hidden from
// non-admin callers.
func IsSensitiveSetting(name string) bool {
	n := strings.ToLower(name)
	if sensitiveNames[n] {
		return true
	}
	for _, p := range sensitivePrefixes {
		if strings.HasPrefix(n, p) {
			return true
		}
	}
	return false
}
