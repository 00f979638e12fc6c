// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service holds the application operations behind the HTTP
// handlers. Each service owns its transactions and returns errors that
// wrap one of the sentinel categories below, so handlers can map them to
// status codes with errors.Is.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"featherpress/internal/auth"
	"featherpress/internal/storage"
)

// Error categories. Call sites wrap them with a message:
// fmt.Errorf("%w: title is required", ErrValidation).
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrPermission   = errors.New("permission denied")
	ErrUnauthorized = errors.New("authentication required")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage error")
)

func invalid(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, a...)...)
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

// Paging limits shared by the list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// normalizePage applies defaults to page and limit and rejects values
// outside 1..MaxPageSize.
func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if page < 1 {
		return 0, 0, invalid("page must be >= 1")
	}
	if limit < 1 || limit > MaxPageSize {
		return 0, 0, invalid("limit must be between 1 and %d", MaxPageSize)
	}
	return page, limit, nil
}

// pages returns how many pages of size limit hold total items.
func pages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// requireCaller returns ErrUnauthorized for anonymous callers and
// ErrPermission for banned ones.
func requireCaller(caller *auth.Identity) error {
	if caller == nil {
		return ErrUnauthorized
	}
	if caller.Role.Banned() {
		return fmt.Errorf("%w: account is banned", ErrPermission)
	}
	return nil
}

func isAdmin(caller *auth.Identity) bool {
	return caller != nil && caller.Role.CanManage()
}

// canModify reports whether caller may change something owned by ownerID.
func canModify(caller *auth.Identity, ownerID int64) bool {
	return caller != nil && auth.CanModify(caller.Role, caller.UserID, ownerID)
}

// removeFile deletes a stored file and logs failures. It returns true when
// the file is gone.
func removeFile(ctx context.Context, sink *storage.Sink, url, backend, key string) bool {
	if sink == nil || url == "" {
		return false
	}
	if err := sink.Delete(ctx, url, backend, key); err != nil {
		slog.Warn("file delete failed", "url", url, "error", err)
		return false
	}
	return true
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// Column widths of client metadata stored with comments and views.
const (
	maxClientIPLen  = 64
	maxUserAgentLen = 500
)

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
