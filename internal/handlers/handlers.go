// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the featherpress API.
// Handlers are grouped by concern (posts, comments, auth, public, admin),
// receive their services through the handler struct and speak JSON only.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"featherpress/internal/auth"
	"featherpress/internal/middleware"
	"featherpress/internal/service"
)

// maxJSONBody bounds a JSON request body.
const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// statusFor lists the service error categories in match order.
var statusFor = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrConflict, http.StatusBadRequest},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrPermission, http.StatusForbidden},
	{service.ErrStorage, http.StatusInternalServerError},
}

// writeJSON writes v as the JSON body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeMessage writes {"message": msg} with status 200.
func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeError maps err to a status code and writes {"error": msg}.
// Unclassified errors are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
			}
			writeJSON(w, m.status, map[string]string{"error": err.Error()})
			return
		}
	}
	slog.Error("unexpected error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// decodeJSON reads a JSON body into dst and validates its struct tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", service.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", service.ErrValidation, err)
	}
	return check(dst)
}

// check validates v and reports the first failing field. Values that are
// not structs, such as bulk bodies, are checked by their handlers.
func check(v any) error {
	if reflect.Indirect(reflect.ValueOf(v)).Kind() != reflect.Struct {
		return nil
	}
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		switch f.Tag() {
		case "required":
			return fmt.Errorf("%w: %s is required", service.ErrValidation, f.Field())
		case "email":
			return fmt.Errorf("%w: %s must be a valid email address", service.ErrValidation, f.Field())
		case "min", "max", "gt", "gte":
			return fmt.Errorf("%w: %s must satisfy %s=%s", service.ErrValidation, f.Field(), f.Tag(), f.Param())
		default:
			return fmt.Errorf("%w: %s is invalid", service.ErrValidation, f.Field())
		}
	}
	return fmt.Errorf("%w: %v", service.ErrValidation, err)
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", service.ErrValidation, name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter. Absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrValidation, name)
	}
	return n, nil
}

// queryInt64 is queryInt for ids.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrValidation, name)
	}
	return n, nil
}

// pageParams reads the page and limit query parameters.
func pageParams(r *http.Request) (page, limit int, err error) {
	if page, err = queryInt(r, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// caller returns the authenticated identity or nil.
func caller(r *http.Request) *auth.Identity {
	return middleware.IdentityFrom(r.Context())
}

// idList is the body of bulk operations.
type idList struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}
