// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// featherpress API. Routes are organized into public, authenticated and
// admin groups with the matching middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"featherpress/internal/auth"
	"featherpress/internal/handlers"
	"featherpress/internal/middleware"
)

// Handlers bundles the handler groups the router mounts.
type Handlers struct {
	Posts    *handlers.Posts
	Comments *handlers.Comments
	Auth     *handlers.Auth
	Public   *handlers.Public
	Admin    *handlers.Admin
}

// New creates and returns the configured Chi router. limiter may be nil,
// in which case public writes are not rate limited. Files under uploadDir
// are served at /uploads/.
func New(issuer *auth.Issuer, limiter *middleware.RateLimiter, uploadDir string, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Authenticate(issuer))

	r.Get("/health", healthHandler)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	limited := func(r chi.Router) chi.Router {
		if limiter == nil {
			return r
		}
		return r.With(limiter.Middleware)
	}

	// Posts and engagement.
	r.Route("/posts", func(r chi.Router) {
		r.Get("/feed", h.Posts.Feed)
		r.Get("/pinned", h.Posts.Pinned)
		r.Get("/{id}", h.Posts.Get)
		limited(r).Post("/view", h.Posts.View)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/mine", h.Posts.Mine)
			r.Post("/", h.Posts.Create)
			r.Put("/{id}", h.Posts.Update)
			r.Delete("/{id}", h.Posts.Delete)
			r.Post("/like", h.Posts.Like)
			r.Get("/like/status", h.Posts.LikeStatus)
			limited(r).Post("/share", h.Posts.Share)
		})
	})

	// Comments. Anonymous comments are accepted.
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", h.Comments.ForPost)
		limited(r).Post("/", h.Comments.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Patch("/{id}", h.Comments.Edit)
			r.Delete("/{id}", h.Comments.Delete)
		})
	})

	// Taxonomy and settings.
	r.Get("/categories", h.Public.Categories)
	r.Get("/tags", h.Public.Tags)
	r.Get("/tags/popular", h.Public.PopularTags)
	r.Get("/settings", h.Public.Settings)

	// Authentication.
	r.Route("/auth", func(r chi.Router) {
		limited(r).Post("/signin", h.Auth.SignIn)
		limited(r).Post("/signup", h.Auth.SignUp)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", h.Auth.Me)
			r.Post("/2fa/setup", h.Auth.SetupTOTP)
			r.Post("/2fa/verify", h.Auth.VerifyTOTP)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		mountAdmin(r, h)
	})

	return r
}

// mountAdmin registers the admin-only routes.
func mountAdmin(r chi.Router, h Handlers) {
	a, c, p := h.Admin, h.Comments, h.Posts

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", p.AdminList)
		r.Get("/stats", p.AdminStats)
		r.Get("/{id}", p.AdminGet)
		r.Put("/{id}", p.Update)
		r.Delete("/{id}", p.Delete)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", a.UsersList)
		r.Post("/", a.UserCreate)
		r.Get("/{id}", a.UserGet)
		r.Put("/{id}", a.UserUpdate)
		r.Delete("/{id}", a.UserDelete)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", a.GroupsList)
		r.Post("/", a.GroupCreate)
		r.Get("/{id}", a.GroupGet)
		r.Put("/{id}", a.GroupUpdate)
		r.Delete("/{id}", a.GroupDelete)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", a.CategoriesList)
		r.Post("/", a.CategoryCreate)
		r.Get("/stats", a.CategoryStats)
		r.Get("/search", a.CategoriesSearch)
		r.Put("/reorder", a.CategoriesReorder)
		r.Post("/bulk-delete", a.CategoriesDelete)
		r.Get("/{id}", a.CategoryGet)
		r.Put("/{id}", a.CategoryUpdate)
		r.Post("/{id}/toggle", a.CategoryToggle)
		r.Delete("/{id}", a.CategoryDelete)
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", a.TagsList)
		r.Get("/stats", a.TagStats)
		r.Put("/{name}", a.TagRename)
		r.Delete("/{name}", a.TagDelete)
		r.Get("/{name}/posts", a.TagPosts)
		r.Put("/{name}/status", a.TagStatus)
	})

	r.Route("/comments", func(r chi.Router) {
		r.Get("/", c.List)
		r.Get("/by-post", c.Grouped)
		r.Get("/stats", c.Stats)
		r.Post("/batch", c.Batch)
		r.Put("/{id}/status", c.SetStatus)
		r.Delete("/{id}", c.Delete)
	})

	r.Route("/spam", func(r chi.Router) {
		r.Get("/", c.SpamList)
		r.Get("/stats", c.SpamStats)
		r.Post("/batch", c.SpamBatch)
		r.Post("/mark/{id}", c.MarkSpam)
		r.Put("/{id}/status", c.SetSpamStatus)
	})

	r.Route("/uploads", func(r chi.Router) {
		r.Get("/", a.UploadsList)
		r.Post("/", a.UploadCreate)
		r.Get("/stats", a.UploadsStats)
		r.Post("/cleanup", a.UploadsCleanup)
		r.Get("/{id}", a.UploadGet)
		r.Put("/{id}", a.UploadUpdate)
		r.Delete("/{id}", a.UploadDelete)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", a.SettingsList)
		r.Put("/", a.SettingsPut)
		r.Get("/{name}", a.SettingGet)
		r.Put("/{name}", a.SettingPut)
		r.Delete("/{name}", a.SettingDelete)
	})

	r.Get("/modules", a.ModulesList)
	r.Post("/modules/{id}/toggle", a.ModuleToggle)
	r.Delete("/modules/{id}", a.ModuleDelete)
	r.Get("/feathers", a.FeathersList)
	r.Post("/feathers/{id}/toggle", a.FeatherToggle)
	r.Get("/themes", a.ThemesList)
	r.Post("/themes/{id}/activate", a.ThemeActivate)
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
