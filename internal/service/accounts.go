// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"featherpress/internal/auth"
	"featherpress/internal/models"
	"featherpress/internal/store"
)

// SettingDefaultGroupMember makes new sign-ups members instead of guests.
const SettingDefaultGroupMember = "default_group_member"

// Profile is the API shape of a user.
type Profile struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    *string   `json:"fullName"`
	Website     *string   `json:"website"`
	Image       *string   `json:"image"`
	GroupID     int64     `json:"groupId"`
	Role        auth.Role `json:"role"`
	Approved    bool      `json:"approved"`
	IsActive    bool      `json:"isActive"`
	TOTPEnabled bool      `json:"totpEnabled"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// NewProfile projects a user. The role comes from auth.RoleForGroup.
func NewProfile(u *models.User) Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Website:     u.Website,
		Image:       u.Image,
		GroupID:     u.GroupID,
		Role:        auth.RoleForGroup(u.GroupID),
		Approved:    u.Approved,
		IsActive:    u.IsActive,
		TOTPEnabled: u.TOTPEnabled,
		JoinedAt:    u.JoinedAt,
	}
}

// Session is returned by sign-in and sign-up.
type Session struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        Profile `json:"user"`
}

// SignUpInput is a self-service registration.
type SignUpInput struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
}

// Accounts handles sign-in, sign-up and second factors.
type Accounts struct {
	db     *sql.DB
	tokens *auth.Issuer
}

// NewAccounts creates the account service.
func NewAccounts(db *sql.DB, tokens *auth.Issuer) *Accounts {
	return &Accounts{db: db, tokens: tokens}
}

// SignIn checks the credentials and, when enabled, the TOTP code.
func (s *Accounts) SignIn(ctx context.Context, login, password, code string) (*Session, error) {
	users := store.NewUserStore(s.db)
	u, err := users.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if u == nil || !users.CheckPassword(u, password) {
		slog.Warn("failed sign-in", "login", login)
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrPermission)
	}
	if auth.RoleForGroup(u.GroupID).Banned() {
		return nil, fmt.Errorf("%w: account is banned", ErrPermission)
	}
	if u.TOTPEnabled {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fmt.Errorf("%w: two-factor code required", ErrUnauthorized)
		}
		if u.TOTPSecret == nil || !auth.ValidateTOTP(code, *u.TOTPSecret) {
			return nil, fmt.Errorf("%w: invalid two-factor code", ErrUnauthorized)
		}
	}

	slog.Info("user signed in", "user_id", u.ID)
	return s.session(u)
}

// SignUp registers a guest, or a member when the default_group_member
// setting is on, and signs them in.
func (s *Accounts) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" {
		return nil, invalid("username and email are required")
	}

	group := models.GroupGuest
	st, err := store.NewSettingStore(s.db).Get(ctx, SettingDefaultGroupMember)
	if err != nil {
		return nil, err
	}
	if st != nil && st.Typed() == true {
		group = models.GroupMember
	}

	u := &models.User{
		Username: username,
		Email:    email,
		FullName: trimmed(in.FullName),
		GroupID:  group,
		Approved: true,
		IsActive: true,
	}
	if err := store.NewUserStore(s.db).Create(ctx, u, in.Password); err != nil {
		return nil, conflictOnUnique(err, "username or email already registered")
	}

	slog.Info("user signed up", "user_id", u.ID, "group_id", u.GroupID)
	return s.session(u)
}

// Me returns the caller's profile.
func (s *Accounts) Me(ctx context.Context, caller *auth.Identity) (*Profile, error) {
	u, err := s.caller(ctx, caller)
	if err != nil {
		return nil, err
	}
	p := NewProfile(u)
	return &p, nil
}

// SetupTOTP stores a fresh secret for the caller. It takes effect only
// after VerifyTOTP succeeds.
func (s *Accounts) SetupTOTP(ctx context.Context, caller *auth.Identity) (*auth.TOTPEnrollment, error) {
	u, err := s.caller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if u.TOTPEnabled {
		return nil, fmt.Errorf("%w: two-factor authentication is already enabled", ErrConflict)
	}
	enrollment, err := auth.NewTOTP(u.Email)
	if err != nil {
		return nil, err
	}
	if err := store.NewUserStore(s.db).SetTOTPSecret(ctx, u.ID, enrollment.Secret); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// VerifyTOTP enables the second factor once code matches the stored secret.
func (s *Accounts) VerifyTOTP(ctx context.Context, caller *auth.Identity, code string) error {
	u, err := s.caller(ctx, caller)
	if err != nil {
		return err
	}
	if u.TOTPSecret == nil {
		return invalid("run two-factor setup first")
	}
	if !auth.ValidateTOTP(strings.TrimSpace(code), *u.TOTPSecret) {
		return invalid("invalid two-factor code")
	}
	if err := store.NewUserStore(s.db).EnableTOTP(ctx, u.ID); err != nil {
		return err
	}
	slog.Info("two-factor enabled", "user_id", u.ID)
	return nil
}

func (s *Accounts) caller(ctx context.Context, caller *auth.Identity) (*models.User, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	u, err := store.NewUserStore(s.db).FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
	}
	return u, nil
}

func (s *Accounts) session(u *models.User) (*Session, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "bearer", User: NewProfile(u)}, nil
}
