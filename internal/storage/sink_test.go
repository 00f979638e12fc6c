// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"featherpress/internal/models"
)

// fakeBackend is an in-memory Backend.
type fakeBackend struct {
	name    string
	base    string
	objects map[string][]byte
	putErr  error
	deleted []string
}

func newFake(name string) *fakeBackend {
	return &fakeBackend{name: name, base: "https://cdn.test/" + name, objects: map[string][]byte{}}
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = data
	return f.base + "/" + key, nil
}

func (f *fakeBackend) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBackend) KeyFromURL(rawURL string) (string, bool) {
	return keyFromURL(rawURL, f.base)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSinkSaveRemote(t *testing.T) {
	remote := newFake(BackendMinIO)
	sink := NewSink(remote, NewLocal(t.TempDir()))

	obj, err := sink.Save(context.Background(), "Cat.PNG", pngBytes(t, 4, 3), models.UploadImage)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.Backend != BackendMinIO {
		t.Errorf("backend: got %q, want %q", obj.Backend, BackendMinIO)
	}
	if !strings.HasPrefix(obj.Key, "images/") || !strings.HasSuffix(obj.Key, ".png") {
		t.Errorf("key: got %q, want images/<uuid>.png", obj.Key)
	}
	if obj.Width != 4 || obj.Height != 3 {
		t.Errorf("dimensions: got %dx%d, want 4x3", obj.Width, obj.Height)
	}
	if obj.MimeType != "image/png" {
		t.Errorf("mime: got %q, want image/png", obj.MimeType)
	}
	if _, ok := remote.objects[obj.Key]; !ok {
		t.Error("object not written to remote")
	}
}

// mp4Bytes builds a minimal MP4 whose only track is w by h.
func mp4Bytes(w, h uint32) []byte {
	tkhd := make([]byte, 8+4+20+52+8)
	binary.BigEndian.PutUint32(tkhd, uint32(len(tkhd)))
	copy(tkhd[4:], "tkhd")
	binary.BigEndian.PutUint32(tkhd[len(tkhd)-8:], w<<16)
	binary.BigEndian.PutUint32(tkhd[len(tkhd)-4:], h<<16)

	wrap := func(typ string, body []byte) []byte {
		out := make([]byte, 8, 8+len(body))
		binary.BigEndian.PutUint32(out, uint32(8+len(body)))
		copy(out[4:], typ)
		return append(out, body...)
	}
	return wrap("moov", wrap("trak", tkhd))
}

func TestSinkRecordsVideoDimensions(t *testing.T) {
	sink := NewSink(nil, NewLocal(t.TempDir()))

	obj, err := sink.Save(context.Background(), "clip.mp4", mp4Bytes(1280, 720), models.UploadVideo)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.Width != 1280 || obj.Height != 720 {
		t.Errorf("dimensions: got %dx%d, want 1280x720", obj.Width, obj.Height)
	}

	obj, err = sink.Save(context.Background(), "clip.webm", []byte("not iso bmff"), models.UploadVideo)
	if err != nil {
		t.Fatalf("Save unreadable video: %v", err)
	}
	if obj.Width != 0 || obj.Height != 0 {
		t.Errorf("unreadable video dimensions: got %dx%d, want 0x0", obj.Width, obj.Height)
	}
}

func TestSinkFallsBackToLocal(t *testing.T) {
	dir := t.TempDir()
	remote := newFake(BackendS3)
	remote.putErr = errors.New("connection refused")
	sink := NewSink(remote, NewLocal(dir))

	obj, err := sink.Save(context.Background(), "notes.pdf", []byte("%PDF"), models.UploadFile)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.Backend != BackendLocal {
		t.Errorf("backend: got %q, want local", obj.Backend)
	}
	if !strings.HasPrefix(obj.URL, "/uploads/files/") {
		t.Errorf("url: got %q, want /uploads/files/...", obj.URL)
	}
	data, err := os.ReadFile(filepath.Join(dir, obj.Key))
	if err != nil {
		t.Fatalf("read local file: %v", err)
	}
	if string(data) != "%PDF" {
		t.Errorf("local content: got %q", data)
	}
}

func TestSinkWithoutRemote(t *testing.T) {
	sink := NewSink(nil, NewLocal(t.TempDir()))
	obj, err := sink.Save(context.Background(), "clip.vtt", []byte("WEBVTT"), models.UploadCaption)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.Backend != BackendLocal || !strings.HasPrefix(obj.Key, "captions/") {
		t.Errorf("got backend=%q key=%q", obj.Backend, obj.Key)
	}
}

func TestSinkBothBackendsFail(t *testing.T) {
	remote := newFake(BackendS3)
	remote.putErr = errors.New("down")
	local := newFake(BackendLocal)
	local.putErr = errors.New("disk full")

	_, err := NewSink(remote, local).Save(context.Background(), "a.txt", []byte("a"), models.UploadFile)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error: got %v, want ErrUnavailable", err)
	}
}

func TestSinkDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	remote := newFake(BackendS3)
	sink := NewSink(remote, NewLocal(dir))

	remoteObj, err := sink.Save(ctx, "a.mp3", []byte("id3"), models.UploadAudio)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Run("by metadata", func(t *testing.T) {
		if err := sink.Delete(ctx, remoteObj.URL, remoteObj.Backend, remoteObj.Key); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok := remote.objects[remoteObj.Key]; ok {
			t.Error("remote object still present")
		}
	})

	t.Run("by url", func(t *testing.T) {
		obj, _ := sink.Save(ctx, "b.mp3", []byte("id3"), models.UploadAudio)
		if err := sink.Delete(ctx, obj.URL, "", ""); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok := remote.objects[obj.Key]; ok {
			t.Error("remote object still present")
		}
	})

	t.Run("missing local file", func(t *testing.T) {
		if err := sink.Delete(ctx, "/uploads/images/gone.png", BackendLocal, "images/gone.png"); err != nil {
			t.Errorf("Delete of missing file: %v", err)
		}
	})

	t.Run("foreign url", func(t *testing.T) {
		if err := sink.Delete(ctx, "https://elsewhere.test/x.png", "", ""); err == nil {
			t.Error("expected error for url owned by no backend")
		}
	})
}

func TestFolder(t *testing.T) {
	tests := []struct {
		kind models.UploadKind
		want string
	}{
		{models.UploadImage, "images"},
		{models.UploadVideo, "videos"},
		{models.UploadAudio, "audio"},
		{models.UploadFile, "files"},
		{models.UploadCaption, "captions"},
		{models.UploadKind("other"), "files"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := Folder(tt.kind); got != tt.want {
				t.Errorf("Folder(%q): got %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.PNG", "image/png"},
		{"no-extension", "application/octet-stream"},
		{"archive.unknownext", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MimeType(tt.name); got != tt.want {
				t.Errorf("MimeType(%q): got %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
