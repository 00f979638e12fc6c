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

	"featherpress/internal/auth"
	"featherpress/internal/cache"
	"featherpress/internal/database"
	"featherpress/internal/models"
	"featherpress/internal/storage"
	"featherpress/internal/store"
)

// UserQuery selects a page of the admin user listing.
type UserQuery struct {
	Search  string
	GroupID int64
	Page    int
	Limit   int
}

// UserList is one page of users.
type UserList struct {
	Users []Profile `json:"users"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Pages int       `json:"pages"`
}

// NewUserInput is an admin-created account.
type NewUserInput struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	GroupID  int64   `json:"groupId" validate:"omitempty,gt=0"`
}

// UserPatch is an admin user update. Nil fields are left alone.
type UserPatch struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Website  *string `json:"website" validate:"omitempty,max=255"`
	Image    *string `json:"image" validate:"omitempty,max=500"`
	GroupID  *int64  `json:"groupId" validate:"omitempty,gt=0"`
	Approved *bool   `json:"approved"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// GroupInput creates or replaces a group.
type GroupInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Permissions []string `json:"permissions"`
}

// Users is the admin surface over accounts and groups.
type Users struct {
	db       *sql.DB
	sink     *storage.Sink
	cache    *cache.ResponseCache
	counters *cache.Counters
}

// NewUsers creates the user administration service.
func NewUsers(db *sql.DB, sink *storage.Sink, rc *cache.ResponseCache, counters *cache.Counters) *Users {
	return &Users{db: db, sink: sink, cache: rc, counters: counters}
}

// List returns one page of users.
func (s *Users) List(ctx context.Context, q UserQuery) (*UserList, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	users, total, err := store.NewUserStore(s.db).List(ctx, store.UserFilter{
		Search:  q.Search,
		GroupID: q.GroupID,
		Page:    store.Page{Page: page, Limit: limit},
	})
	if err != nil {
		return nil, err
	}
	out := make([]Profile, len(users))
	for i := range users {
		out[i] = NewProfile(&users[i])
	}
	return &UserList{Users: out, Total: total, Page: page, Limit: limit, Pages: pages(total, limit)}, nil
}

// Get returns one user.
func (s *Users) Get(ctx context.Context, id int64) (*Profile, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	p := NewProfile(u)
	return &p, nil
}

// Create adds an account. GroupID defaults to Guest.
func (s *Users) Create(ctx context.Context, in NewUserInput) (*Profile, error) {
	if in.GroupID == 0 {
		in.GroupID = models.GroupGuest
	}
	if err := s.requireGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}
	u := &models.User{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		FullName: trimmed(in.FullName),
		GroupID:  in.GroupID,
		Approved: true,
		IsActive: true,
	}
	if err := store.NewUserStore(s.db).Create(ctx, u, in.Password); err != nil {
		return nil, conflictOnUnique(err, "username or email already registered")
	}
	slog.Info("user created", "user_id", u.ID, "group_id", u.GroupID)
	p := NewProfile(u)
	return &p, nil
}

// Update applies the present fields of patch.
func (s *Users) Update(ctx context.Context, id int64, patch UserPatch) (*Profile, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.GroupID != nil {
		if err := s.requireGroup(ctx, *patch.GroupID); err != nil {
			return nil, err
		}
		u.GroupID = *patch.GroupID
	}
	if patch.FullName != nil {
		u.FullName = trimmed(patch.FullName)
	}
	if patch.Website != nil {
		u.Website = trimmed(patch.Website)
	}
	if patch.Image != nil {
		u.Image = trimmed(patch.Image)
	}
	if patch.Approved != nil {
		u.Approved = *patch.Approved
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		users := store.NewUserStore(tx)
		if err := users.Update(ctx, u); err != nil {
			return err
		}
		if patch.Password != nil {
			return users.SetPassword(ctx, u.ID, *patch.Password)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p := NewProfile(u)
	return &p, nil
}

// Delete removes a user with everything they own: posts (with their
// comments, engagement, tags and uploads), comments, likes, shares,
// views, tags and uploads. Files are removed after the commit.
func (s *Users) Delete(ctx context.Context, id int64, caller *auth.Identity) (*models.UserDeletion, error) {
	if caller != nil && caller.UserID == id {
		return nil, invalid("you cannot delete your own account")
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	var (
		result   models.UserDeletion
		postIDs  []int64
		posts    []*models.Post
		files    [][]models.Upload
		orphaned []models.Upload
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		postStore := store.NewPostStore(tx)
		var err error
		if postIDs, err = postStore.IDsByUser(ctx, id); err != nil {
			return err
		}
		for _, pid := range postIDs {
			p, err := postStore.FindByID(ctx, pid)
			if err != nil {
				return err
			}
			removed, err := purgePost(ctx, tx, pid)
			if err != nil {
				return err
			}
			posts = append(posts, p)
			files = append(files, removed)
			result.Uploads += int64(len(removed))
		}
		result.Posts = int64(len(postIDs))

		if result.Comments, err = store.NewCommentStore(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		counts, err := store.NewEngagementStore(tx).DeleteByUser(ctx, id)
		if err != nil {
			return err
		}
		result.Likes, result.Shares, result.Views = counts.Likes, counts.Shares, counts.Views
		if result.Tags, err = store.NewTagStore(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}

		uploads := store.NewUploadStore(tx)
		if orphaned, err = uploads.ListByUser(ctx, id); err != nil {
			return err
		}
		ids := make([]int64, len(orphaned))
		for i, u := range orphaned {
			ids[i] = u.ID
		}
		n, err := uploads.DeleteByIDs(ctx, ids)
		if err != nil {
			return err
		}
		result.Uploads += n

		return store.NewUserStore(tx).Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	for i, p := range posts {
		result.Files += removePostFiles(ctx, s.sink, files[i])
		s.counters.InvalidatePost(ctx, p.ID)
	}
	result.Files += removePostFiles(ctx, s.sink, orphaned)
	if len(posts) > 0 {
		s.cache.Invalidate(ctx, cache.PinnedKey)
	}

	slog.Info("user deleted", "user_id", id, "posts", result.Posts, "comments", result.Comments, "files", result.Files)
	return &result, nil
}

// ListGroups returns every group with its user count.
func (s *Users) ListGroups(ctx context.Context) ([]models.Group, error) {
	return store.NewGroupStore(s.db).List(ctx)
}

// GetGroup returns one group.
func (s *Users) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	g, err := store.NewGroupStore(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, notFound("group")
	}
	return g, nil
}

// CreateGroup adds a group after checking its permission names.
func (s *Users) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	g, err := groupFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := store.NewGroupStore(s.db).Create(ctx, g); err != nil {
		return nil, conflictOnUnique(err, "group name already exists")
	}
	return g, nil
}

// UpdateGroup replaces the name, description and permissions of a group.
func (s *Users) UpdateGroup(ctx context.Context, id int64, in GroupInput) (*models.Group, error) {
	if _, err := s.GetGroup(ctx, id); err != nil {
		return nil, err
	}
	g, err := groupFromInput(in)
	if err != nil {
		return nil, err
	}
	g.ID = id
	if err := store.NewGroupStore(s.db).Update(ctx, g); err != nil {
		return nil, conflictOnUnique(err, "group name already exists")
	}
	return s.GetGroup(ctx, id)
}

// DeleteGroup removes an empty, non-seeded group.
func (s *Users) DeleteGroup(ctx context.Context, id int64) error {
	if models.IsSeededGroup(id) {
		return fmt.Errorf("%w: built-in groups cannot be deleted", ErrPermission)
	}
	if _, err := s.GetGroup(ctx, id); err != nil {
		return err
	}
	n, err := store.NewUserStore(s.db).CountInGroup(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: group still has %d users", ErrConflict, n)
	}
	return store.NewGroupStore(s.db).Delete(ctx, id)
}

func groupFromInput(in GroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("group name is required")
	}
	if bad := auth.UnknownPermissions(in.Permissions); len(bad) > 0 {
		return nil, invalid("unknown permissions: %s", strings.Join(bad, ", "))
	}
	perms := in.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &models.Group{Name: name, Description: trimmed(in.Description), Permissions: perms}, nil
}

func (s *Users) find(ctx context.Context, id int64) (*models.User, error) {
	u, err := store.NewUserStore(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("user")
	}
	return u, nil
}

func (s *Users) requireGroup(ctx context.Context, id int64) error {
	g, err := store.NewGroupStore(s.db).FindByID(ctx, id)
	if err != nil {
		return err
	}
	if g == nil {
		return invalid("group %d does not exist", id)
	}
	return nil
}
