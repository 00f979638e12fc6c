// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Content is the type-specific payload of a post. Every post type has
// exactly one variant, and every variant field is a pointer: nil means
// the key was absent from the request and must not be written.
type Content interface {
	// PostType returns the discriminator this variant belongs to.
	PostType() PostType
	isContent()
}

// TextContent is the payload of a text post.
type TextContent struct {
	Body *string `json:"body,omitempty"`
}

// PhotoContent is the payload of a photo post. The images themselves are
// uploads attached to the post.
type PhotoContent struct {
	Caption *string `json:"caption,omitempty"`
}

// VideoContent is the payload of a video post. VideoURL is an external
// video location used when no video file is uploaded.
type VideoContent struct {
	Caption        *string `json:"caption,omitempty"`
	Description    *string `json:"description,omitempty"`
	VideoThumbnail *string `json:"videoThumbnail,omitempty"`
	VideoURL       *string `json:"videoUrl,omitempty"`
}

// AudioContent is the payload of an audio post.
type AudioContent struct {
	Description      *string `json:"description,omitempty"`
	AudioDescription *string `json:"audioDescription,omitempty"`
}

// QuoteContent is the payload of a quote post.
type QuoteContent struct {
	Quote  *string `json:"quote,omitempty"`
	Source *string `json:"source,omitempty"`
}

// LinkContent is the payload of a link post.
type LinkContent struct {
	URL           *string `json:"url,omitempty"`
	Description   *string `json:"description,omitempty"`
	LinkThumbnail *string `json:"linkThumbnail,omitempty"`
}

// FileContent is the payload of a file post.
type FileContent struct {
	Description *string `json:"description,omitempty"`
}

func (TextContent) PostType() PostType  { return PostTypeText }
func (PhotoContent) PostType() PostType { return PostTypePhoto }
func (VideoContent) PostType() PostType { return PostTypeVideo }
func (AudioContent) PostType() PostType { return PostTypeAudio }
func (QuoteContent) PostType() PostType { return PostTypeQuote }
func (LinkContent) PostType() PostType  { return PostTypeLink }
func (FileContent) PostType() PostType  { return PostTypeFile }

func (TextContent) isContent()  {}
func (PhotoContent) isContent() {}
func (VideoContent) isContent() {}
func (AudioContent) isContent() {}
func (QuoteContent) isContent() {}
func (LinkContent) isContent()  {}
func (FileContent) isContent()  {}

// ErrUnknownPostType is returned when a discriminator is not one of PostTypes.
var ErrUnknownPostType = errors.New("invalid post type")

// DecodeContent parses raw JSON into the variant selected by t. Keys that
// do not belong to the variant are rejected. An empty or null payload
// yields the zero variant.
func DecodeContent(t PostType, raw []byte) (Content, error) {
	var target Content
	switch t {
	case PostTypeText:
		target = &TextContent{}
	case PostTypePhoto:
		target = &PhotoContent{}
	case PostTypeVideo:
		target = &VideoContent{}
	case PostTypeAudio:
		target = &AudioContent{}
	case PostTypeQuote:
		target = &QuoteContent{}
	case PostTypeLink:
		target = &LinkContent{}
	case PostTypeFile:
		target = &FileContent{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPostType, t)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(target); err != nil {
			return nil, fmt.Errorf("decode %s content: %w", t, err)
		}
	}

	switch c := target.(type) {
	case *TextContent:
		return *c, nil
	case *PhotoContent:
		return *c, nil
	case *VideoContent:
		return *c, nil
	case *AudioContent:
		return *c, nil
	case *QuoteContent:
		return *c, nil
	case *LinkContent:
		return *c, nil
	case *FileContent:
		return *c, nil
	}
	panic(fmt.Sprintf("models: unhandled content variant %T", target))
}

// ApplyContent writes the non-nil fields of c onto the matching post
// columns. Columns owned by other variants are never touched.
func ApplyContent(p *Post, c Content) {
	switch c := c.(type) {
	case TextContent:
		set(&p.Body, c.Body)
	case PhotoContent:
		set(&p.Caption, c.Caption)
	case VideoContent:
		set(&p.Caption, c.Caption)
		set(&p.Description, c.Description)
		set(&p.Thumbnail, c.VideoThumbnail)
		set(&p.LinkURL, c.VideoURL)
	case AudioContent:
		set(&p.Description, c.Description)
		set(&p.Caption, c.AudioDescription)
	case QuoteContent:
		set(&p.Quote, c.Quote)
		set(&p.QuoteSource, c.Source)
	case LinkContent:
		set(&p.LinkURL, c.URL)
		set(&p.Description, c.Description)
		set(&p.Thumbnail, c.LinkThumbnail)
	case FileContent:
		set(&p.Description, c.Description)
	default:
		panic(fmt.Sprintf("models: unhandled content variant %T", c))
	}
}

// ContentFromPost reads the variant for p.Type back out of the post columns.
func ContentFromPost(p *Post) (Content, error) {
	switch p.Type {
	case PostTypeText:
		return TextContent{Body: p.Body}, nil
	case PostTypePhoto:
		return PhotoContent{Caption: p.Caption}, nil
	case PostTypeVideo:
		return VideoContent{
			Caption:        p.Caption,
			Description:    p.Description,
			VideoThumbnail: p.Thumbnail,
			VideoURL:       p.LinkURL,
		}, nil
	case PostTypeAudio:
		return AudioContent{Description: p.Description, AudioDescription: p.Caption}, nil
	case PostTypeQuote:
		return QuoteContent{Quote: p.Quote, Source: p.QuoteSource}, nil
	case PostTypeLink:
		return LinkContent{URL: p.LinkURL, Description: p.Description, LinkThumbnail: p.Thumbnail}, nil
	case PostTypeFile:
		return FileContent{Description: p.Description}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPostType, p.Type)
}

// CheckRequired returns an error naming the missing field when a variant
// lacks the text its type cannot exist without. Attachment requirements
// (photo, audio, file, video) are checked where uploads are known.
func CheckRequired(c Content) error {
	switch c := c.(type) {
	case TextContent:
		if blank(c.Body) {
			return errors.New("content.body is required for text posts")
		}
	case QuoteContent:
		if blank(c.Quote) {
			return errors.New("content.quote is required for quote posts")
		}
	case LinkContent:
		if blank(c.URL) {
			return errors.New("content.url is required for link posts")
		}
	case PhotoContent, VideoContent, AudioContent, FileContent:
	default:
		panic(fmt.Sprintf("models: unhandled content variant %T", c))
	}
	return nil
}

func set(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
