// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"log/slog"
	"time"

	"featherpress/internal/markdown"
)

// ExcerptLength caps the plain-text preview of text posts, in runes.
const ExcerptLength = 280

// PostDetail gathers everything needed to project a post for the API.
type PostDetail struct {
	Post      Post
	Attribute PostAttribute
	Author    Author
	Category  *string
	Tags      []string
	Uploads   []Upload
	Likes     int64
	Shares    int64
	Views     int64
	Comments  int64
}

// Author is the public face of a post's owner.
type Author struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	FullName *string `json:"fullName"`
	Image    *string `json:"image"`
	Website  *string `json:"website"`
}

// PostCounts are the engagement totals of one post.
type PostCounts struct {
	Likes    int64
	Shares   int64
	Views    int64
	Comments int64
}

// PostView is the API representation of a post. Every endpoint that
// returns posts produces this shape via Project.
type PostView struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Type          PostType   `json:"type"`
	URL           string     `json:"url"`
	Author        Author     `json:"author"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Status        PostStatus `json:"status"`
	Pinned        bool       `json:"pinned"`
	AllowComments bool       `json:"allowComments"`
	Visibility    Visibility `json:"visibility"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty"`
	OriginalWork  *bool      `json:"originalWork,omitempty"`
	RightsHolder  *string    `json:"rightsHolder,omitempty"`
	License       string     `json:"license"`
	Tags          []string   `json:"tags"`
	Category      *string    `json:"category"`
	Likes         int64      `json:"likes"`
	Shares        int64      `json:"shares"`
	Saves         int64      `json:"saves"`
	ViewCount     int64      `json:"viewCount"`
	Comments      int64      `json:"comments"`
	Content       any        `json:"content"`
}

// TextView is the projected content of a text post.
type TextView struct {
	Body     *string `json:"body"`
	BodyHTML string  `json:"bodyHtml,omitempty"`
	Excerpt  string  `json:"excerpt,omitempty"`
}

// PhotoView is the projected content of a photo post.
type PhotoView struct {
	Images  []string `json:"images"`
	Caption *string  `json:"caption"`
}

// VideoView is the projected content of a video post.
type VideoView struct {
	VideoURL       *string  `json:"videoUrl"`
	VideoThumbnail *string  `json:"videoThumbnail"`
	Caption        *string  `json:"caption"`
	Description    *string  `json:"description"`
	Captions       []string `json:"captions"`
}

// AudioView is the projected content of an audio post.
type AudioView struct {
	AudioURL         *string `json:"audioUrl"`
	AudioDescription *string `json:"audioDescription"`
	Description      *string `json:"description"`
}

// QuoteView is the projected content of a quote post.
type QuoteView struct {
	Quote  *string `json:"quote"`
	Source *string `json:"source"`
}

// LinkView is the projected content of a link post.
type LinkView struct {
	URL             *string `json:"url"`
	LinkTitle       string  `json:"linkTitle"`
	LinkDescription *string `json:"linkDescription"`
	LinkThumbnail   *string `json:"linkThumbnail"`
}

// FileView is the projected content of a file post.
type FileView struct {
	Files       []FileEntry `json:"files"`
	Description *string     `json:"description"`
}

// FileEntry describes one downloadable file of a file post.
type FileEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Project converts a post and its collections into the API shape.
func Project(d PostDetail) PostView {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostView{
		ID:            d.Post.ID,
		Title:         d.Post.Title,
		Type:          d.Post.Type,
		URL:           d.Post.URL,
		Author:        d.Author,
		CreatedAt:     d.Attribute.CreatedAt,
		UpdatedAt:     d.Attribute.UpdatedAt,
		Status:        d.Attribute.Status,
		Pinned:        d.Attribute.Pinned,
		AllowComments: d.Attribute.AllowComments,
		Visibility:    d.Attribute.Visibility,
		ScheduledAt:   d.Attribute.ScheduledAt,
		OriginalWork:  d.Attribute.OriginalWork,
		RightsHolder:  d.Attribute.RightsHolder,
		License:       d.Attribute.License,
		Tags:          tags,
		Category:      d.Category,
		Likes:         d.Likes,
		Shares:        d.Shares,
		ViewCount:     d.Views,
		Comments:      d.Comments,
		Content:       projectContent(&d.Post, d.Uploads),
	}
}

func projectContent(p *Post, uploads []Upload) any {
	c, err := ContentFromPost(p)
	if err != nil {
		slog.Warn("post with unknown type", "post_id", p.ID, "type", p.Type)
		return struct{}{}
	}

	switch c := c.(type) {
	case TextContent:
		v := TextView{Body: c.Body}
		if c.Body != nil {
			html, err := markdown.ToHTML(*c.Body)
			if err != nil {
				slog.Warn("markdown render failed", "post_id", p.ID, "error", err)
			} else {
				v.BodyHTML = html
			}
			v.Excerpt = markdown.Excerpt(*c.Body, ExcerptLength)
		}
		return v
	case PhotoContent:
		return PhotoView{Images: uploadURLs(uploads, UploadImage), Caption: c.Caption}
	case VideoContent:
		videoURL := c.VideoURL
		if urls := uploadURLs(uploads, UploadVideo); len(urls) > 0 {
			videoURL = &urls[0]
		}
		return VideoView{
			VideoURL:       videoURL,
			VideoThumbnail: c.VideoThumbnail,
			Caption:        c.Caption,
			Description:    c.Description,
			Captions:       uploadURLs(uploads, UploadCaption),
		}
	case AudioContent:
		var audioURL *string
		if urls := uploadURLs(uploads, UploadAudio); len(urls) > 0 {
			audioURL = &urls[0]
		}
		return AudioView{AudioURL: audioURL, AudioDescription: c.AudioDescription, Description: c.Description}
	case QuoteContent:
		return QuoteView{Quote: c.Quote, Source: c.Source}
	case LinkContent:
		return LinkView{
			URL:             c.URL,
			LinkTitle:       p.Title,
			LinkDescription: c.Description,
			LinkThumbnail:   c.LinkThumbnail,
		}
	case FileContent:
		files := []FileEntry{}
		for _, u := range uploads {
			if u.Kind != UploadFile {
				continue
			}
			files = append(files, FileEntry{Name: u.Filename, URL: u.URL, Size: u.Size, Type: u.MimeType})
		}
		return FileView{Files: files, Description: c.Description}
	}
	panic(fmt.Sprintf("models: unhandled content variant %T", c))
}

func uploadURLs(uploads []Upload, kind UploadKind) []string {
	urls := []string{}
	for _, u := range uploads {
		if u.Kind == kind {
			urls = append(urls, u.URL)
		}
	}
	return urls
}
