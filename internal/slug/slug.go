// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	// nonWord matches anything that isn't a letter, mark, digit,
	// underscore, space or hyphen in any script.
	nonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Zs}-]`)
	// separators collapses runs of spaces, underscores and hyphens.
	separators = regexp.MustCompile(`[\s\p{Zs}_-]+`)
)

// maxAttempts bounds the numeric-suffix search in Unique.
const maxAttempts = 1000

// Generate creates a URL-friendly slug from the given string. Letters
// outside ASCII are kept and lowercased.
// Example: "Hello, World! 2026" → "hello-world-2026"
// Example: "Café Münster" → "café-münster"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonWord.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// ExistsFunc reports whether a candidate slug is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Unique returns base if it is free, otherwise the first free
// "base-1", "base-2", ... candidate.
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	candidate := base
	for i := 1; i <= maxAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxAttempts)
}
