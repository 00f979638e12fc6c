// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"featherpress/internal/service"
)

// Auth groups the sign-in, sign-up and two-factor endpoints.
type Auth struct {
	accounts *service.Accounts
}

// NewAuth creates the authentication handlers.
func NewAuth(accounts *service.Accounts) *Auth {
	return &Auth{accounts: accounts}
}

type signInRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code"`
}

// SignIn serves POST /auth/signin.
func (a *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := a.accounts.SignIn(r.Context(), req.Login, req.Password, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// SignUp serves POST /auth/signup.
func (a *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := a.accounts.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// Me serves GET /auth/me.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	p, err := a.accounts.Me(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SetupTOTP serves POST /auth/2fa/setup.
func (a *Auth) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	enrollment, err := a.accounts.SetupTOTP(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

type totpRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyTOTP serves POST /auth/2fa/verify.
func (a *Auth) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	var req totpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.accounts.VerifyTOTP(r.Context(), caller(r), req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "two-factor authentication enabled")
}
