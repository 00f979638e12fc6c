// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalURLPrefix is the path under which local files are served.
const LocalURLPrefix = "/uploads/"

// Local stores files under a directory on the local disk.
type Local struct {
	root string
}

// NewLocal creates a local backend rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

// Root returns the directory files are written under.
func (l *Local) Root() string { return l.root }

// Name implements Backend.
func (l *Local) Name() string { return BackendLocal }

// Put writes data to <root>/<key> and returns /uploads/<key>.
func (l *Local) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	path, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("local mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("local write %s: %w", path, err)
	}
	return LocalURLPrefix + key, nil
}

// Delete removes the file for key. A missing file is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local delete %s: %w", path, err)
	}
	return nil
}

// KeyFromURL extracts the key from an /uploads/ URL.
func (l *Local) KeyFromURL(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, LocalURLPrefix) || len(rawURL) == len(LocalURLPrefix) {
		return "", false
	}
	return rawURL[len(LocalURLPrefix):], true
}

// path resolves key below the root and refuses keys that escape it.
func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("local: empty key")
	}
	return filepath.Join(l.root, clean), nil
}
