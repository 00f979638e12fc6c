// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// UploadKind classifies an uploaded file.
type UploadKind string

const (
	UploadImage   UploadKind = "image"
	UploadVideo   UploadKind = "video"
	UploadAudio   UploadKind = "audio"
	UploadFile    UploadKind = "file"
	UploadCaption UploadKind = "caption"
)

// Valid reports whether k is a known upload kind.
func (k UploadKind) Valid() bool {
	switch k {
	case UploadImage, UploadVideo, UploadAudio, UploadFile, UploadCaption:
		return true
	}
	return false
}

// UploadKindForMIME derives the upload kind from a MIME type prefix.
func UploadKindForMIME(mimeType string) UploadKind {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return UploadImage
	case strings.HasPrefix(mt, "video/"):
		return UploadVideo
	case strings.HasPrefix(mt, "audio/"):
		return UploadAudio
	case strings.HasPrefix(mt, "text/vtt"):
		return UploadCaption
	default:
		return UploadFile
	}
}

// UploadMeta records where an upload lives so it can be deleted later.
type UploadMeta struct {
	Backend string `json:"backend"`
	Key     string `json:"key"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Upload is a file attached to a post, or an orphan when PostID is nil.
// Standalone marks media-library files an admin uploaded on purpose; the
// scheduled sweep leaves those alone.
type Upload struct {
	ID         int64      `json:"id"`
	URL        string     `json:"url"`
	Kind       UploadKind `json:"type"`
	Filename   string     `json:"filename"`
	Size       int64      `json:"size"`
	MimeType   string     `json:"mime_type"`
	UserID     int64      `json:"user_id"`
	PostID     *int64     `json:"post_id,omitempty"`
	Standalone bool       `json:"standalone"`
	Meta       UploadMeta `json:"metadata"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsOrphan returns true if the upload is not attached to any post.
func (u *Upload) IsOrphan() bool {
	return u.PostID == nil
}

// LinkedPost names the post an upload is attached to.
type LinkedPost struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Type  PostType `json:"type"`
}

// UploadDetail is one upload with its uploader and post resolved.
type UploadDetail struct {
	Upload
	Uploader   string      `json:"uploader"`
	LinkedPost *LinkedPost `json:"linkedPost"`
}

// UploadStats summarises the upload table for the admin dashboard.
type UploadStats struct {
	Total        int64                `json:"totalUploads"`
	ByType       map[UploadKind]int64 `json:"uploadsByType"`
	StorageBytes int64                `json:"totalStorageBytes"`
	Storage      string               `json:"totalStorage"`
	Recent       int64                `json:"recentUploads"`
	Orphaned     int64                `json:"orphanedUploads"`
	Standalone   int64                `json:"standaloneUploads"`
}
