// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cursor encodes feed positions as opaque strings. A position is
// the (created_at, id) pair of the last item a client has seen.
package cursor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ErrMalformed is returned when a cursor string cannot be decoded.
var ErrMalformed = errors.New("malformed cursor")

// Position identifies a post in (created_at DESC, id DESC) order.
type Position struct {
	CreatedAt time.Time `json:"t"`
	ID        int64     `json:"id"`
}

// Encode returns the opaque form of p.
func Encode(p Position) string {
	b, _ := json.Marshal(p)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses an opaque cursor. An empty string yields nil.
func Decode(s string) (*Position, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var p Position
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.ID <= 0 || p.CreatedAt.IsZero() {
		return nil, ErrMalformed
	}
	return &p, nil
}
