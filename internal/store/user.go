// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"featherpress/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db DBTX
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, email, hashed_password, full_name, website, image,
	group_id, approved, is_active, totp_secret, totp_enabled, joined_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FullName, &u.Website, &u.Image,
		&u.GroupID, &u.Approved, &u.IsActive, &u.TOTPSecret, &u.TOTPEnabled, &u.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) findOne(ctx context.Context, what, query string, args ...any) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", what, err)
	}
	return u, nil
}

// FindByID retrieves a user by id. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findOne(ctx, "id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByLogin retrieves a user by email or username, case-insensitively.
// Returns nil if not found.
func (s *UserStore) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.findOne(ctx, "login", `
		SELECT `+userColumns+` FROM users
		WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($1)
		ORDER BY id LIMIT 1`, strings.TrimSpace(login))
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search  string
	GroupID int64
	Page    Page
}

// List returns one page of users and the filtered total.
func (s *UserStore) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	var a args
	var where []string
	if search := strings.TrimSpace(f.Search); search != "" {
		ph := a.add(likePattern(search))
		where = append(where, "(username ILIKE "+ph+" OR email ILIKE "+ph+" OR full_name ILIKE "+ph+")")
	}
	if f.GroupID > 0 {
		where = append(where, "group_id = "+a.add(f.GroupID))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+cond, a...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit, offset := a.add(f.Page.Limit), a.add(f.Page.Offset())
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+cond+` ORDER BY id LIMIT `+limit+` OFFSET `+offset, a...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Create inserts a new user with a bcrypt-hashed password. u.ID and
// u.JoinedAt are filled from the database.
func (s *UserStore) Create(ctx context.Context, u *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.HashedPassword = string(hash)

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, hashed_password, full_name, website, image,
			group_id, approved, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, joined_at
	`, u.Username, u.Email, u.HashedPassword, u.FullName, u.Website, u.Image,
		u.GroupID, u.Approved, u.IsActive,
	).Scan(&u.ID, &u.JoinedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update writes the profile, membership and state columns of u.
func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			full_name = $1, website = $2, image = $3, group_id = $4,
			approved = $5, is_active = $6
		WHERE id = $7
	`, u.FullName, u.Website, u.Image, u.GroupID, u.Approved, u.IsActive, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// SetPassword replaces a user's password hash.
func (s *UserStore) SetPassword(ctx context.Context, userID int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET hashed_password = $1 WHERE id = $2`, string(hash), userID); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
func (s *UserStore) SetTOTPSecret(ctx context.Context, userID int64, secret string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET totp_secret = $1 WHERE id = $2`, secret, userID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for a user (after successful code verification).
func (s *UserStore) EnableTOTP(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET totp_enabled = TRUE WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// Delete removes a user by ID. Owned rows must be gone already.
func (s *UserStore) Delete(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CountInGroup returns how many users belong to a group.
func (s *UserStore) CountInGroup(ctx context.Context, groupID int64) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE group_id = $1`, groupID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users in group: %w", err)
	}
	return n, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) == nil
}
