// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"featherpress/internal/imaging"
	"featherpress/internal/models"
)

// Backend names recorded in upload metadata.
const (
	BackendS3    = "s3"
	BackendMinIO = "minio"
	BackendLocal = "local"
)

// ErrUnavailable is returned when neither the remote nor the local
// backend accepted a file.
var ErrUnavailable = errors.New("storage unavailable")

// Backend is a place files can be written to and removed from.
type Backend interface {
	Name() string
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}

// Object describes a stored file.
type Object struct {
	URL      string
	Backend  string
	Key      string
	Size     int64
	MimeType string
	Width    int
	Height   int
}

// folders maps upload kinds to their directory below the storage root.
var folders = map[models.UploadKind]string{
	models.UploadImage:   "images",
	models.UploadVideo:   "videos",
	models.UploadAudio:   "audio",
	models.UploadFile:    "files",
	models.UploadCaption: "captions",
}

// Folder returns the directory files of kind k are stored in.
func Folder(k models.UploadKind) string {
	if f, ok := folders[k]; ok {
		return f
	}
	return "files"
}

// MimeType guesses a content type from the file extension.
func MimeType(filename string) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// Sink writes uploads to the remote backend and falls back to local disk.
type Sink struct {
	remote Backend // may be nil
	local  Backend
}

// NewSink creates a sink. remote may be nil, in which case every file is
// stored locally.
func NewSink(remote, local Backend) *Sink {
	return &Sink{remote: remote, local: local}
}

// Save stores data under <folder>/<uuid><ext> and returns where it went.
// Image and video dimensions are recorded when the headers decode.
func (s *Sink) Save(ctx context.Context, filename string, data []byte, kind models.UploadKind) (*Object, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := Folder(kind) + "/" + strings.ReplaceAll(uuid.New().String(), "-", "") + ext
	obj := &Object{
		Key:      key,
		Size:     int64(len(data)),
		MimeType: MimeType(filename),
	}

	switch kind {
	case models.UploadImage:
		if w, h, err := imaging.ImageSize(data); err == nil {
			obj.Width, obj.Height = w, h
		} else {
			slog.Debug("image size unreadable", "filename", filename, "error", err)
		}
	case models.UploadVideo:
		if w, h, err := imaging.VideoSize(data); err == nil {
			obj.Width, obj.Height = w, h
		} else {
			slog.Debug("video size unreadable", "filename", filename, "error", err)
		}
	}

	if s.remote != nil {
		url, err := s.remote.Put(ctx, key, obj.MimeType, data)
		if err == nil {
			obj.URL, obj.Backend = url, s.remote.Name()
			return obj, nil
		}
		slog.Warn("remote storage failed, using local disk",
			"backend", s.remote.Name(), "key", key, "error", err)
	}

	url, err := s.local.Put(ctx, key, obj.MimeType, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	obj.URL, obj.Backend = url, s.local.Name()
	return obj, nil
}

// Delete removes a stored file. The backend and key recorded at save time
// are preferred; without them the owning backend is found from the URL.
// Files that no longer exist count as deleted.
func (s *Sink) Delete(ctx context.Context, rawURL, backend, key string) error {
	b := s.backendFor(backend)
	if b == nil || key == "" {
		b, key = s.resolve(rawURL)
	}
	if b == nil {
		return fmt.Errorf("delete %s: no backend owns this url", rawURL)
	}
	return b.Delete(ctx, key)
}

func (s *Sink) backendFor(name string) Backend {
	switch {
	case name == "":
		return nil
	case s.remote != nil && name == s.remote.Name():
		return s.remote
	case name == s.local.Name():
		return s.local
	}
	return nil
}

func (s *Sink) resolve(rawURL string) (Backend, string) {
	if key, ok := s.local.KeyFromURL(rawURL); ok {
		return s.local, key
	}
	if s.remote != nil {
		if key, ok := s.remote.KeyFromURL(rawURL); ok {
			return s.remote, key
		}
	}
	return nil, ""
}

// Meta converts o into the metadata stored with an upload row.
func (o *Object) Meta() models.UploadMeta {
	return models.UploadMeta{
		Backend: o.Backend,
		Key:     o.Key,
		Width:   o.Width,
		Height:  o.Height,
	}
}
